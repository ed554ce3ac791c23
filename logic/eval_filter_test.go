// logic/eval_filter_test.go
package logic

import "testing"

func TestMovingAverageWindow4(t *testing.T) {
	spec := &FuncSpec{Op: OpMovingAvg, NumInputs: 1, Enabled: true}
	spec.Params.WindowLen = 4
	st := newTestState(spec)

	var out int32
	for _, v := range []int32{100, 200, 300, 400} {
		out = run(t, spec, st, 10, v)
	}
	if out != 250 {
		t.Fatalf("moving_avg final = %d, want 250", out)
	}
	// Fifth sample evicts the first.
	if out = run(t, spec, st, 10, 500); out != 350 {
		t.Fatalf("moving_avg after 500 = %d, want 350", out)
	}
}

func TestMovingAveragePartialWindow(t *testing.T) {
	spec := &FuncSpec{Op: OpMovingAvg, NumInputs: 1, Enabled: true}
	spec.Params.WindowLen = 8
	st := newTestState(spec)

	if got := run(t, spec, st, 10, 100); got != 100 {
		t.Fatalf("first sample = %d, want 100", got)
	}
	if got := run(t, spec, st, 10, 200); got != 150 {
		t.Fatalf("two samples = %d, want 150", got)
	}
}

func TestMedianFilter(t *testing.T) {
	spec := &FuncSpec{Op: OpMedian, NumInputs: 1, Enabled: true}
	spec.Params.WindowLen = 5
	st := newTestState(spec)

	var out int32
	for _, v := range []int32{10, 9999, 12, 11, 13} {
		out = run(t, spec, st, 10, v)
	}
	// The spike is rejected.
	if out != 12 {
		t.Fatalf("median = %d, want 12", out)
	}
}

func TestMinMaxWindow(t *testing.T) {
	minSpec := &FuncSpec{Op: OpMinWindow, NumInputs: 1, Enabled: true}
	minSpec.Params.WindowLen = 3
	maxSpec := &FuncSpec{Op: OpMaxWindow, NumInputs: 1, Enabled: true}
	maxSpec.Params.WindowLen = 3

	stMin := newTestState(minSpec)
	stMax := newTestState(maxSpec)

	samples := []int32{5, 3, 8, 7}
	var lo, hi int32
	for _, v := range samples {
		lo = run(t, minSpec, stMin, 10, v)
		hi = run(t, maxSpec, stMax, 10, v)
	}
	// Window holds 3,8,7.
	if lo != 3 {
		t.Fatalf("min_window = %d, want 3", lo)
	}
	if hi != 8 {
		t.Fatalf("max_window = %d, want 8", hi)
	}
}

func TestLowPassSeedsAndConverges(t *testing.T) {
	spec := &FuncSpec{Op: OpLowPass, NumInputs: 1, Enabled: true}
	spec.Params.Alpha = 500 // 0.5 per tick
	st := newTestState(spec)

	if got := run(t, spec, st, 10, 1000); got != 1000 {
		t.Fatalf("first sample seeds output: got %d, want 1000", got)
	}
	if got := run(t, spec, st, 10, 0); got != 500 {
		t.Fatalf("after one step: got %d, want 500", got)
	}
	if got := run(t, spec, st, 10, 0); got != 250 {
		t.Fatalf("after two steps: got %d, want 250", got)
	}
	// Converges without oscillation.
	var out int32
	for i := 0; i < 40; i++ {
		out = run(t, spec, st, 10, 0)
	}
	if out != 0 {
		t.Fatalf("low_pass should settle at 0, got %d", out)
	}
}

func TestLowPassAlphaDefaultsToPassThrough(t *testing.T) {
	spec := &FuncSpec{Op: OpLowPass, NumInputs: 1, Enabled: true}
	st := newTestState(spec)
	run(t, spec, st, 10, 100)
	if got := run(t, spec, st, 10, 900); got != 900 {
		t.Fatalf("alpha=0 should pass through, got %d", got)
	}
}
