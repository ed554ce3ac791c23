// logic/eval_arith_test.go
package logic

import (
	"math"
	"testing"
)

func TestArithmeticOps(t *testing.T) {
	cases := []struct {
		op   Op
		in   []int32
		want int32
	}{
		{OpAdd, []int32{100, 200, 300}, 600},
		{OpSubtract, []int32{100, 30, 20}, 50},
		{OpMultiply, []int32{7, -3}, -21},
		{OpDivide, []int32{100, 4}, 25},
		{OpMin, []int32{5, -2, 9}, -2},
		{OpMax, []int32{5, -2, 9}, 9},
		{OpAverage, []int32{100, 200, 300, 400}, 250},
		{OpAbs, []int32{-42}, 42},
	}
	for _, c := range cases {
		spec := &FuncSpec{Op: c.op, NumInputs: len(c.in), Enabled: true}
		st := newTestState(spec)
		if got := run(t, spec, st, 10, c.in...); got != c.want {
			t.Errorf("%v(%v) = %d, want %d", c.op, c.in, got, c.want)
		}
	}
}

func TestDivideByZeroClampsNoTrap(t *testing.T) {
	spec := &FuncSpec{Op: OpDivide, NumInputs: 2, Enabled: true}
	st := newTestState(spec)
	if got := run(t, spec, st, 10, 100, 0); got != math.MaxInt32 {
		t.Fatalf("divide(100, 0) = %d, want MaxInt32", got)
	}
	if got := run(t, spec, st, 10, -100, 0); got != math.MaxInt32 {
		t.Fatalf("divide(-100, 0) = %d, want MaxInt32", got)
	}
	if got := run(t, spec, st, 10, math.MinInt32, -1); got != math.MaxInt32 {
		t.Fatalf("divide(MinInt32, -1) = %d, want MaxInt32", got)
	}
}

func TestAddSaturates(t *testing.T) {
	spec := &FuncSpec{Op: OpAdd, NumInputs: 2, Enabled: true}
	st := newTestState(spec)
	if got := run(t, spec, st, 10, math.MaxInt32, 1); got != math.MaxInt32 {
		t.Fatalf("add overflow = %d, want MaxInt32", got)
	}
	if got := run(t, spec, st, 10, math.MinInt32, -1); got != math.MinInt32 {
		t.Fatalf("add underflow = %d, want MinInt32", got)
	}
}

func TestScale(t *testing.T) {
	spec := &FuncSpec{Op: OpScale, NumInputs: 1, Enabled: true}
	spec.Params.Num = 3
	spec.Params.Den = 2
	spec.Params.Offset = 10
	st := newTestState(spec)
	if got := run(t, spec, st, 10, 100); got != 160 {
		t.Fatalf("scale(100 * 3/2 + 10) = %d, want 160", got)
	}

	// Den 0 behaves as 1.
	spec.Params.Den = 0
	spec.Params.Offset = 0
	if got := run(t, spec, st, 10, 100); got != 300 {
		t.Fatalf("scale with den=0 = %d, want 300", got)
	}
}

func TestClampOp(t *testing.T) {
	spec := &FuncSpec{Op: OpClamp, NumInputs: 1, Enabled: true}
	spec.Params.Min = -10
	spec.Params.Max = 10
	st := newTestState(spec)
	if got := run(t, spec, st, 10, 99); got != 10 {
		t.Fatalf("clamp(99) = %d, want 10", got)
	}
	if got := run(t, spec, st, 10, -99); got != -10 {
		t.Fatalf("clamp(-99) = %d, want -10", got)
	}
	if got := run(t, spec, st, 10, 3); got != 3 {
		t.Fatalf("clamp(3) = %d, want 3", got)
	}
}

// Identical (config, inputs, state, delta) must give identical
// (output, new state) — determinism holds for every op family.
func TestEvaluatorDeterminism(t *testing.T) {
	specs := []*FuncSpec{
		{Op: OpAdd, NumInputs: 2, Enabled: true},
		{Op: OpHysteresis, NumInputs: 1, Enabled: true,
			Params: Params{Lower: 10, Upper: 20}},
		{Op: OpMovingAvg, NumInputs: 1, Enabled: true,
			Params: Params{WindowLen: 4}},
		{Op: OpPID, NumInputs: 2, Enabled: true,
			Params: Params{Kp: 1000, Ki: 100, Min: -100, Max: 100}},
		{Op: OpDelayOn, NumInputs: 1, Enabled: true,
			Params: Params{DurationMS: 50}},
	}
	for _, spec := range specs {
		a := newTestState(spec)
		b := newTestState(spec)
		for step := 0; step < 20; step++ {
			in := []int32{int32(step * 7 % 30), int32(step % 5)}
			outA, _ := evaluate(spec, in[:spec.NumInputs], a, 10)
			outB, _ := evaluate(spec, in[:spec.NumInputs], b, 10)
			if outA != outB {
				t.Fatalf("%v step %d: outputs diverged (%d vs %d)", spec.Op, step, outA, outB)
			}
			if *a != *b {
				t.Fatalf("%v step %d: states diverged", spec.Op, step)
			}
		}
	}
}
