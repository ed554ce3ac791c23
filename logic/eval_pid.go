// logic/eval_pid.go
package logic

import "pdmcode-go/x/mathx"

// evalPID is the fixed-point PID loop: out = Kp·e + Ki·∫e + Kd·de/dt.
// Inputs are [setpoint, process]; gains are per-mille; the integral
// accumulates error·ms; output is clamped to [Min, Max].
//
// Options: Reversed swaps the error sign (cooling-style loops),
// AntiWindup freezes the integral while the output is saturated, and
// DFiltAlpha low-pass filters the derivative term.
func evalPID(p *Params, setpoint, process int32, st *State, deltaMS int32) int32 {
	e := mathx.SatSub32(setpoint, process)
	if p.Reversed {
		e = mathx.SatSub32(process, setpoint)
	}

	// Proportional, per-mille gain.
	pTerm := int64(p.Kp) * int64(e) / 1000

	// Integral: error·ms accumulated; gain per-mille, ms→s.
	integ := st.integ + int64(e)*int64(deltaMS)
	iTerm := int64(p.Ki) * integ / 1_000_000

	// Derivative: de/dt in units per second, optionally filtered.
	var dTerm int64
	if deltaMS > 0 && st.primed {
		de := (int64(e) - int64(st.prevErr)) * 1000 / int64(deltaMS)
		d := mathx.Sat32(de)
		if p.DFiltAlpha > 0 && p.DFiltAlpha < 1000 {
			st.dFilt += int32(int64(d-st.dFilt) * int64(p.DFiltAlpha) / 1000)
			d = st.dFilt
		} else {
			st.dFilt = d
		}
		dTerm = int64(p.Kd) * int64(d) / 1000
	}
	st.primed = true
	st.prevErr = e

	raw := pTerm + iTerm + dTerm
	out := mathx.Sat32(raw)
	if p.Min < p.Max {
		out = mathx.Clamp(out, p.Min, p.Max)
	}

	// Anti-windup: keep the old integral while saturated in the
	// direction the error keeps pushing.
	if p.AntiWindup && int64(out) != raw {
		saturatedHigh := raw > int64(out)
		if (saturatedHigh && e > 0) || (!saturatedHigh && e < 0) {
			integ = st.integ
		}
	}
	st.integ = integ

	return out
}
