// logic/eval_filter.go
package logic

// Windowed filters share one fixed-capacity sample window per
// function; the low-pass filter needs only the held output.

func evalWindow(op Op, in int32, st *State) int32 {
	st.win.Push(in)
	switch op {
	case OpMovingAvg:
		st.out = st.win.Mean()
	case OpMedian:
		st.out = st.win.Median()
	case OpMinWindow:
		st.out = st.win.Min()
	case OpMaxWindow:
		st.out = st.win.Max()
	}
	return st.out
}

// evalLowPass is a first-order IIR: y += alpha*(x-y)/1000, alpha in
// per-mille. The first sample seeds the output directly so the filter
// does not slew up from zero at startup.
func evalLowPass(p *Params, in int32, st *State) int32 {
	if !st.primed {
		st.primed = true
		st.out = in
		return st.out
	}
	alpha := p.Alpha
	if alpha <= 0 {
		alpha = 1000 // pass-through when unconfigured
	}
	if alpha > 1000 {
		alpha = 1000
	}
	diff := int64(in) - int64(st.out)
	step := diff * int64(alpha) / 1000
	// Truncation would stall the filter short of the target; keep it
	// moving by one count until it lands.
	if step == 0 && diff != 0 {
		if diff > 0 {
			step = 1
		} else {
			step = -1
		}
	}
	st.out += int32(step)
	return st.out
}
