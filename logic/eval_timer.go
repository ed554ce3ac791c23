// logic/eval_timer.go
package logic

import "pdmcode-go/x/mathx"

// Timer-family evaluators. All elapsed time comes from the caller's
// deltaMS; nothing here reads a clock, which keeps the engine
// deterministic and robust to tick jitter.

// evalDelay implements DELAY_ON and DELAY_OFF against DurationMS.
//
//	DELAY_ON:  output turns 1 only after the input has been nonzero
//	           for the full duration; drops immediately with it.
//	DELAY_OFF: output follows the input up, and holds 1 for the
//	           duration after the input drops.
func evalDelay(op Op, p *Params, in int32, st *State, deltaMS int32) int32 {
	switch op {
	case OpDelayOn:
		if !truthy(in) {
			st.elapsedMS = 0
			st.out = 0
			return 0
		}
		st.elapsedMS = satAddMS(st.elapsedMS, deltaMS)
		st.out = b2i(st.elapsedMS >= p.DurationMS)
		return st.out
	case OpDelayOff:
		if truthy(in) {
			st.elapsedMS = 0
			st.out = 1
			return 1
		}
		if !truthy(st.out) {
			return 0
		}
		st.elapsedMS = satAddMS(st.elapsedMS, deltaMS)
		if st.elapsedMS >= p.DurationMS {
			st.out = 0
		}
		return st.out
	}
	return 0
}

// evalRunTimer implements the run/reset timers. Input 0 is the run
// gate; input 1, when configured, is a level reset.
//
//	COUNT_UP:   output is accumulated milliseconds, saturating at
//	            PresetMS when a preset is configured.
//	COUNT_DOWN: output is remaining milliseconds from PresetMS.
//	STOPWATCH:  free-running accumulation, reset on input-1 rising
//	            edge, holds while the gate is low.
func evalRunTimer(op Op, p *Params, in []int32, st *State, deltaMS int32) int32 {
	run := truthy(in[0])
	var reset int32
	if len(in) >= 2 {
		reset = in[1]
	}

	switch op {
	case OpCountUpTimer:
		if truthy(reset) {
			st.elapsedMS = 0
		} else if run {
			st.elapsedMS = satAddMS(st.elapsedMS, deltaMS)
			if p.PresetMS > 0 && st.elapsedMS > p.PresetMS {
				st.elapsedMS = p.PresetMS
			}
		}
		return st.elapsedMS

	case OpCountDownTimer:
		if truthy(reset) {
			st.elapsedMS = p.PresetMS
		} else if run && st.elapsedMS > 0 {
			st.elapsedMS -= mathx.Min(deltaMS, st.elapsedMS)
		}
		return st.elapsedMS

	case OpStopwatch:
		risingReset := !truthy(st.prevB) && truthy(reset)
		st.prevB = reset
		if risingReset {
			st.elapsedMS = 0
		}
		if run {
			st.elapsedMS = satAddMS(st.elapsedMS, deltaMS)
		}
		return st.elapsedMS
	}
	return 0
}

// evalRetrigTimer is the retriggerable one-shot: every rising edge of
// the trigger reloads the window and the output stays 1 until it runs
// out.
func evalRetrigTimer(p *Params, in int32, st *State, deltaMS int32) int32 {
	rising := !truthy(st.prevA) && truthy(in)
	st.prevA = in

	if rising && p.DurationMS > 0 {
		st.elapsedMS = p.DurationMS
	} else if st.elapsedMS > 0 {
		st.elapsedMS -= mathx.Min(deltaMS, st.elapsedMS)
	}
	st.out = b2i(st.elapsedMS > 0)
	return st.out
}

// evalCounter counts rising edges: input 0 increments, input 1
// decrements, input 2 resets to Default (level). Clamps — never
// wraps — at [Min, Max].
func evalCounter(p *Params, in []int32, st *State) int32 {
	step := p.Step
	if step == 0 {
		step = 1
	}

	incEdge := !truthy(st.prevA) && truthy(in[0])
	st.prevA = in[0]

	var decEdge bool
	if len(in) >= 2 {
		decEdge = !truthy(st.prevB) && truthy(in[1])
		st.prevB = in[1]
	}
	var reset bool
	if len(in) >= 3 {
		reset = truthy(in[2])
	}

	switch {
	case reset:
		st.out = p.Default
	case incEdge && !decEdge:
		st.out = mathx.SatAdd32(st.out, step)
	case decEdge && !incEdge:
		st.out = mathx.SatSub32(st.out, step)
	}
	if p.Min < p.Max {
		st.out = mathx.Clamp(st.out, p.Min, p.Max)
	}
	return st.out
}

// evalSelector is a stateful position switch: input 0 steps the index
// up, input 1 steps it down, both edge-triggered, clamped to
// [First, Last]. Input 2 (level) snaps back to Default.
func evalSelector(p *Params, in []int32, st *State) int32 {
	upEdge := !truthy(st.prevA) && truthy(in[0])
	st.prevA = in[0]

	var downEdge bool
	if len(in) >= 2 {
		downEdge = !truthy(st.prevB) && truthy(in[1])
		st.prevB = in[1]
	}
	var reset bool
	if len(in) >= 3 {
		reset = truthy(in[2])
	}

	switch {
	case reset:
		st.out = p.Default
	case upEdge && !downEdge:
		st.out = mathx.SatAdd32(st.out, 1)
	case downEdge && !upEdge:
		st.out = mathx.SatSub32(st.out, 1)
	}
	st.out = mathx.Clamp(st.out, p.First, p.Last)
	return st.out
}
