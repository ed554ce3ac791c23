// logic/eval.go
package logic

import "pdmcode-go/x/mathx"

// evaluate runs one operation: a pure function of (spec, inputs,
// state, deltaMS). It never allocates, blocks, or touches anything
// outside st. ok=false flags an unrecognised op; the executor counts
// it and leaves the output channel untouched.
func evaluate(spec *FuncSpec, in []int32, st *State, deltaMS int32) (out int32, ok bool) {
	switch spec.Op {
	case OpAnd, OpOr, OpXor, OpNand, OpNor, OpNot:
		return evalBool(spec.Op, in), true
	case OpEqual, OpNotEqual, OpLess, OpGreater, OpLessEqual, OpGreaterEqual, OpInRange:
		return evalCompare(spec, in), true
	case OpEdgeRising, OpEdgeFalling:
		return evalEdge(spec.Op, in[0], st), true
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpMin, OpMax,
		OpAverage, OpAbs, OpScale, OpClamp:
		return evalArith(spec, in), true
	case OpToggle:
		return evalToggle(in[0], st), true
	case OpSetResetLatch:
		return evalLatch(in[0], in[1], st), true
	case OpPulse:
		return evalPulse(&spec.Params, in[0], st, deltaMS), true
	case OpFlasher:
		return evalFlasher(&spec.Params, in[0], st, deltaMS), true
	case OpHysteresis:
		return evalHysteresis(&spec.Params, in[0], st), true
	case OpDelayOn, OpDelayOff:
		return evalDelay(spec.Op, &spec.Params, in[0], st, deltaMS), true
	case OpCountUpTimer, OpCountDownTimer, OpStopwatch:
		return evalRunTimer(spec.Op, &spec.Params, in, st, deltaMS), true
	case OpRetrigTimer:
		return evalRetrigTimer(&spec.Params, in[0], st, deltaMS), true
	case OpTable1D:
		return evalTable1D(spec.Params.T1, in[0]), true
	case OpTable2D:
		return evalTable2D(spec.Params.T2, in[0], in[1]), true
	case OpTable3D:
		return evalTable3D(spec.Params.T3, in[0], in[1], in[2]), true
	case OpMovingAvg, OpMedian, OpMinWindow, OpMaxWindow:
		return evalWindow(spec.Op, in[0], st), true
	case OpLowPass:
		return evalLowPass(&spec.Params, in[0], st), true
	case OpPID:
		return evalPID(&spec.Params, in[0], in[1], st, deltaMS), true
	case OpCounter:
		return evalCounter(&spec.Params, in, st), true
	case OpSelector:
		return evalSelector(&spec.Params, in, st), true
	}
	return 0, false
}

func truthy(v int32) bool { return v != 0 }

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// evalBool folds the whole input list. NOT reads only input 0.
func evalBool(op Op, in []int32) int32 {
	switch op {
	case OpNot:
		return b2i(!truthy(in[0]))
	case OpAnd, OpNand:
		all := true
		for _, v := range in {
			if !truthy(v) {
				all = false
				break
			}
		}
		if op == OpNand {
			return b2i(!all)
		}
		return b2i(all)
	case OpOr, OpNor:
		any := false
		for _, v := range in {
			if truthy(v) {
				any = true
				break
			}
		}
		if op == OpNor {
			return b2i(!any)
		}
		return b2i(any)
	case OpXor:
		n := 0
		for _, v := range in {
			if truthy(v) {
				n++
			}
		}
		return b2i(n%2 == 1)
	}
	return 0
}

// evalCompare compares input 0 against input 1 when configured,
// otherwise against Params.Rhs. IN_RANGE is inclusive at both bounds.
func evalCompare(spec *FuncSpec, in []int32) int32 {
	a := in[0]
	if spec.Op == OpInRange {
		return b2i(a >= spec.Params.Lower && a <= spec.Params.Upper)
	}
	b := spec.Params.Rhs
	if len(in) >= 2 {
		b = in[1]
	}
	switch spec.Op {
	case OpEqual:
		return b2i(a == b)
	case OpNotEqual:
		return b2i(a != b)
	case OpLess:
		return b2i(a < b)
	case OpGreater:
		return b2i(a > b)
	case OpLessEqual:
		return b2i(a <= b)
	case OpGreaterEqual:
		return b2i(a >= b)
	}
	return 0
}

// evalArith runs the saturating integer maths. Folding operations
// consume the whole input list.
func evalArith(spec *FuncSpec, in []int32) int32 {
	p := &spec.Params
	switch spec.Op {
	case OpAdd:
		acc := int64(0)
		for _, v := range in {
			acc += int64(v)
		}
		return mathx.Sat32(acc)
	case OpSubtract:
		acc := int64(in[0])
		for _, v := range in[1:] {
			acc -= int64(v)
		}
		return mathx.Sat32(acc)
	case OpMultiply:
		out := in[0]
		for _, v := range in[1:] {
			out = mathx.SatMul32(out, v)
		}
		return out
	case OpDivide:
		// Division by zero pins to the representable extreme, no trap.
		return mathx.DivClamp32(in[0], in[1])
	case OpMin:
		out := in[0]
		for _, v := range in[1:] {
			out = mathx.Min(out, v)
		}
		return out
	case OpMax:
		out := in[0]
		for _, v := range in[1:] {
			out = mathx.Max(out, v)
		}
		return out
	case OpAverage:
		acc := int64(0)
		for _, v := range in {
			acc += int64(v)
		}
		return int32(acc / int64(len(in)))
	case OpAbs:
		if in[0] == -2147483648 {
			return 2147483647
		}
		return mathx.Abs(in[0])
	case OpScale:
		den := p.Den
		if den == 0 {
			den = 1
		}
		return mathx.Sat32(int64(in[0])*int64(p.Num)/int64(den) + int64(p.Offset))
	case OpClamp:
		return mathx.Clamp(in[0], p.Min, p.Max)
	}
	return 0
}
