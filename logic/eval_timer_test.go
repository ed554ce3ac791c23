// logic/eval_timer_test.go
package logic

import "testing"

func TestDelayOn(t *testing.T) {
	spec := &FuncSpec{Op: OpDelayOn, NumInputs: 1, Enabled: true}
	spec.Params.DurationMS = 50
	st := newTestState(spec)

	if got := run(t, spec, st, 20, 1); got != 0 {
		t.Fatal("20ms elapsed: want 0")
	}
	if got := run(t, spec, st, 20, 1); got != 0 {
		t.Fatal("40ms elapsed: want 0")
	}
	if got := run(t, spec, st, 20, 1); got != 1 {
		t.Fatal("60ms elapsed: want 1")
	}
	// Input drop resets immediately.
	if got := run(t, spec, st, 20, 0); got != 0 {
		t.Fatal("input dropped: want 0")
	}
	if got := run(t, spec, st, 20, 1); got != 0 {
		t.Fatal("accumulation must restart after drop")
	}
}

func TestDelayOff(t *testing.T) {
	spec := &FuncSpec{Op: OpDelayOff, NumInputs: 1, Enabled: true}
	spec.Params.DurationMS = 50
	st := newTestState(spec)

	if got := run(t, spec, st, 20, 1); got != 1 {
		t.Fatal("input high: want 1 immediately")
	}
	if got := run(t, spec, st, 20, 0); got != 1 {
		t.Fatal("20ms after drop: want hold 1")
	}
	if got := run(t, spec, st, 20, 0); got != 1 {
		t.Fatal("40ms after drop: want hold 1")
	}
	if got := run(t, spec, st, 20, 0); got != 0 {
		t.Fatal("60ms after drop: want 0")
	}
	// Going high mid-holdoff restarts cleanly.
	if got := run(t, spec, st, 20, 1); got != 1 {
		t.Fatal("re-assert: want 1")
	}
}

func TestCountUpTimer(t *testing.T) {
	spec := &FuncSpec{Op: OpCountUpTimer, NumInputs: 2, Enabled: true}
	spec.Params.PresetMS = 100
	st := newTestState(spec)

	if got := run(t, spec, st, 40, 1, 0); got != 40 {
		t.Fatalf("got %d, want 40", got)
	}
	if got := run(t, spec, st, 40, 0, 0); got != 40 {
		t.Fatalf("gate low should hold: got %d, want 40", got)
	}
	if got := run(t, spec, st, 40, 1, 0); got != 80 {
		t.Fatalf("got %d, want 80", got)
	}
	if got := run(t, spec, st, 40, 1, 0); got != 100 {
		t.Fatalf("preset saturation: got %d, want 100", got)
	}
	if got := run(t, spec, st, 40, 1, 1); got != 0 {
		t.Fatalf("reset: got %d, want 0", got)
	}
}

func TestCountDownTimer(t *testing.T) {
	spec := &FuncSpec{Op: OpCountDownTimer, NumInputs: 2, Enabled: true}
	spec.Params.PresetMS = 100
	st := newTestState(spec)

	if got := run(t, spec, st, 30, 1, 0); got != 70 {
		t.Fatalf("got %d, want 70", got)
	}
	if got := run(t, spec, st, 30, 1, 0); got != 40 {
		t.Fatalf("got %d, want 40", got)
	}
	if got := run(t, spec, st, 60, 1, 0); got != 0 {
		t.Fatalf("floor at zero: got %d, want 0", got)
	}
	if got := run(t, spec, st, 30, 0, 1); got != 100 {
		t.Fatalf("reset reloads preset: got %d, want 100", got)
	}
}

func TestRetrigTimer(t *testing.T) {
	spec := &FuncSpec{Op: OpRetrigTimer, NumInputs: 1, Enabled: true}
	spec.Params.DurationMS = 50
	st := newTestState(spec)

	if got := run(t, spec, st, 20, 1); got != 1 {
		t.Fatal("trigger edge: want 1")
	}
	if got := run(t, spec, st, 20, 0); got != 1 {
		t.Fatal("30ms left: want 1")
	}
	// Fresh edge mid-window reloads the full duration.
	if got := run(t, spec, st, 20, 1); got != 1 {
		t.Fatal("retrigger: want 1")
	}
	if got := run(t, spec, st, 20, 1); got != 1 {
		t.Fatal("30ms left after reload: want 1")
	}
	if got := run(t, spec, st, 20, 0); got != 1 {
		t.Fatal("10ms left: want 1")
	}
	if got := run(t, spec, st, 20, 0); got != 0 {
		t.Fatal("window expired: want 0")
	}
}

func TestStopwatch(t *testing.T) {
	spec := &FuncSpec{Op: OpStopwatch, NumInputs: 2, Enabled: true}
	st := newTestState(spec)

	if got := run(t, spec, st, 25, 1, 0); got != 25 {
		t.Fatalf("got %d, want 25", got)
	}
	if got := run(t, spec, st, 25, 1, 0); got != 50 {
		t.Fatalf("got %d, want 50", got)
	}
	if got := run(t, spec, st, 25, 0, 0); got != 50 {
		t.Fatalf("paused: got %d, want 50", got)
	}
	if got := run(t, spec, st, 25, 0, 1); got != 0 {
		t.Fatalf("reset edge: got %d, want 0", got)
	}
	// Held reset does not re-zero a running watch.
	if got := run(t, spec, st, 25, 1, 1); got != 25 {
		t.Fatalf("running with held reset: got %d, want 25", got)
	}
}

func TestCounterEdgesAndClamp(t *testing.T) {
	spec := &FuncSpec{Op: OpCounter, NumInputs: 3, Enabled: true}
	spec.Params.Min = 0
	spec.Params.Max = 3
	spec.Params.Default = 0
	st := newTestState(spec)

	pulseUp := func() int32 {
		run(t, spec, st, 10, 1, 0, 0)
		return run(t, spec, st, 10, 0, 0, 0)
	}
	pulseDown := func() int32 {
		run(t, spec, st, 10, 0, 1, 0)
		return run(t, spec, st, 10, 0, 0, 0)
	}

	for i := int32(1); i <= 3; i++ {
		if got := pulseUp(); got != i {
			t.Fatalf("count up: got %d, want %d", got, i)
		}
	}
	// Clamp, not wrap.
	if got := pulseUp(); got != 3 {
		t.Fatalf("clamp at max: got %d, want 3", got)
	}
	if got := pulseDown(); got != 2 {
		t.Fatalf("count down: got %d, want 2", got)
	}
	if got := run(t, spec, st, 10, 0, 0, 1); got != 0 {
		t.Fatalf("reset: got %d, want 0", got)
	}
	if got := pulseDown(); got != 0 {
		t.Fatalf("clamp at min: got %d, want 0", got)
	}
}

func TestCounterResetIsLevelTriggered(t *testing.T) {
	spec := &FuncSpec{Op: OpCounter, NumInputs: 3, Enabled: true}
	spec.Params.Min = 0
	spec.Params.Max = 10
	spec.Params.Default = 5
	st := newTestState(spec)

	run(t, spec, st, 10, 1, 0, 0)
	run(t, spec, st, 10, 0, 0, 0)
	if got := run(t, spec, st, 10, 0, 0, 1); got != 5 {
		t.Fatalf("reset: got %d, want 5", got)
	}
	// Reset held over several ticks keeps pinning the default; an
	// increment edge arriving under it is swallowed, not queued.
	if got := run(t, spec, st, 10, 1, 0, 1); got != 5 {
		t.Fatalf("held reset with inc edge: got %d, want 5", got)
	}
	if got := run(t, spec, st, 10, 1, 0, 1); got != 5 {
		t.Fatalf("held reset: got %d, want 5", got)
	}
	// Releasing reset with the increment input still high produces no
	// new edge, so the count stays put until the next rising edge.
	if got := run(t, spec, st, 10, 1, 0, 0); got != 5 {
		t.Fatalf("released reset, input held: got %d, want 5", got)
	}
	run(t, spec, st, 10, 0, 0, 0)
	if got := run(t, spec, st, 10, 1, 0, 0); got != 6 {
		t.Fatalf("fresh edge after reset: got %d, want 6", got)
	}
}

func TestSelector(t *testing.T) {
	spec := &FuncSpec{Op: OpSelector, NumInputs: 3, Enabled: true}
	spec.Params.First = 1
	spec.Params.Last = 4
	spec.Params.Default = 2
	st := newTestState(spec)

	// Starts at the configured default.
	if got := run(t, spec, st, 10, 0, 0, 0); got != 2 {
		t.Fatalf("initial: got %d, want 2", got)
	}
	run(t, spec, st, 10, 1, 0, 0)
	if got := run(t, spec, st, 10, 0, 0, 0); got != 3 {
		t.Fatalf("up: got %d, want 3", got)
	}
	run(t, spec, st, 10, 1, 0, 0)
	run(t, spec, st, 10, 0, 0, 0)
	// At Last; a further up edge clamps.
	run(t, spec, st, 10, 1, 0, 0)
	if got := run(t, spec, st, 10, 0, 0, 0); got != 4 {
		t.Fatalf("clamp at last: got %d, want 4", got)
	}
	if got := run(t, spec, st, 10, 0, 0, 1); got != 2 {
		t.Fatalf("reset to default: got %d, want 2", got)
	}
}
