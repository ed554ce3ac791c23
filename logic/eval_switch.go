// logic/eval_switch.go
package logic

// Edge, toggle, latch, pulse, flasher and hysteresis evaluators — the
// small stateful switches that give a logic graph its memory.

// evalEdge emits a one-tick pulse on a 0↔nonzero transition.
func evalEdge(op Op, in int32, st *State) int32 {
	prev := st.prevA
	st.prevA = in
	switch op {
	case OpEdgeRising:
		return b2i(!truthy(prev) && truthy(in))
	case OpEdgeFalling:
		return b2i(truthy(prev) && !truthy(in))
	}
	return 0
}

// evalToggle flips the held output on each rising edge of the trigger.
// Holding the trigger high causes no further change.
func evalToggle(in int32, st *State) int32 {
	rising := !truthy(st.prevA) && truthy(in)
	st.prevA = in
	if rising {
		st.out = b2i(!truthy(st.out))
	}
	return st.out
}

// evalLatch is a set/reset latch, reset-dominant when both inputs
// assert in the same tick.
func evalLatch(set, reset int32, st *State) int32 {
	if truthy(reset) {
		st.out = 0
	} else if truthy(set) {
		st.out = 1
	}
	return st.out
}

// evalPulse holds 1 for DurationMS after a trigger edge and ignores
// further triggers while active.
func evalPulse(p *Params, in int32, st *State, deltaMS int32) int32 {
	rising := !truthy(st.prevA) && truthy(in)
	st.prevA = in

	if st.active {
		st.elapsedMS = satAddMS(st.elapsedMS, deltaMS)
		if st.elapsedMS >= p.DurationMS {
			st.active = false
			st.out = 0
		}
		return st.out
	}
	if rising && p.DurationMS > 0 {
		st.active = true
		st.elapsedMS = 0
		st.out = 1
	}
	return st.out
}

// evalFlasher oscillates at the configured on/off period while the
// enable input is nonzero. Phase resets on disable.
func evalFlasher(p *Params, enable int32, st *State, deltaMS int32) int32 {
	if !truthy(enable) {
		st.elapsedMS = 0
		st.out = 0
		return 0
	}
	cycle := p.OnMS + p.OffMS
	if p.OnMS <= 0 || cycle <= 0 {
		st.out = 0
		return 0
	}
	// Sample the phase at the start of the tick, then advance by the
	// externally supplied delta, wrapping on the cycle length.
	st.out = b2i(st.elapsedMS < p.OnMS)
	st.elapsedMS = satAddMS(st.elapsedMS, deltaMS) % cycle
	return st.out
}

// evalHysteresis: 1 at/above Upper, 0 at/below Lower, holds inside the
// deadband.
func evalHysteresis(p *Params, in int32, st *State) int32 {
	switch {
	case in >= p.Upper:
		st.out = 1
	case in <= p.Lower:
		st.out = 0
	}
	return st.out
}

// satAddMS accumulates elapsed milliseconds without wrapping.
func satAddMS(acc, d int32) int32 {
	if d < 0 {
		d = 0
	}
	s := int64(acc) + int64(d)
	if s > 2147483647 {
		return 2147483647
	}
	return int32(s)
}
