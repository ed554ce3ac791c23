// services/protection/protection.go
package protection

import (
	"sort"

	"pdmcode-go/channels"
	"pdmcode-go/types"
)

// Shedder enforces per-output current limits. It plugs into the engine
// as the post-pass guard: after the executor has written its results,
// the shedder overrides any output whose measured current has exceeded
// its limit for longer than the rule's hold time.
//
// A shed output is forced to 0 every tick, marked faulted and disabled.
// It is restored only after the measurement has stayed at or below the
// restore threshold for the rule's retry time, which gives the
// hysteresis that stops a marginal load from chattering.
type Shedder struct {
	rules []ruleState
}

type ruleState struct {
	types.ShedRule
	shed    bool
	overMS  int32 // overload persistence accumulator
	quietMS int32 // below-restore accumulator while shed
}

// NewShedder builds a guard from validated rules. Lower priority sheds
// first, so under a shared overload the least important load drops
// before the measurement of the next rule is consulted.
func NewShedder(rules []types.ShedRule) *Shedder {
	s := &Shedder{rules: make([]ruleState, len(rules))}
	for i, r := range rules {
		s.rules[i].ShedRule = r
	}
	sort.SliceStable(s.rules, func(i, j int) bool {
		return s.rules[i].Priority < s.rules[j].Priority
	})
	return s
}

// Apply runs one protection sweep. Called by the engine after every
// pass with the same delta the pass used.
func (s *Shedder) Apply(reg *channels.Registry, deltaMS int32) {
	for i := range s.rules {
		r := &s.rules[i]
		current := reg.Value(r.CurrentChan)

		if !r.shed {
			if current > r.LimitMilliA {
				r.overMS = satAdd(r.overMS, deltaMS)
				if r.overMS >= r.HoldMS {
					s.shed(reg, r)
				}
			} else {
				r.overMS = 0
			}
			continue
		}

		// Shed: hold the output down until the restore condition has
		// been met for the full retry window.
		_ = reg.SetValue(r.Output, 0)
		if current <= r.RestoreMilliA {
			r.quietMS = satAdd(r.quietMS, deltaMS)
			if r.quietMS >= r.RetryMS {
				s.restore(reg, r)
			}
		} else {
			r.quietMS = 0
		}
	}
}

func (s *Shedder) shed(reg *channels.Registry, r *ruleState) {
	r.shed = true
	r.quietMS = 0
	_ = reg.SetValue(r.Output, 0)
	_ = reg.MarkFault(r.Output, true)
	_ = reg.SetFlags(r.Output, reg.Flags(r.Output)&^channels.FlagEnabled)
}

func (s *Shedder) restore(reg *channels.Registry, r *ruleState) {
	r.shed = false
	r.overMS = 0
	_ = reg.MarkFault(r.Output, false)
	_ = reg.SetFlags(r.Output, reg.Flags(r.Output)|channels.FlagEnabled)
}

// ShedCount reports how many rules are currently holding their output
// down. Diagnostics only.
func (s *Shedder) ShedCount() int {
	n := 0
	for i := range s.rules {
		if s.rules[i].shed {
			n++
		}
	}
	return n
}

func satAdd(a, b int32) int32 {
	c := a + b
	if c < a {
		return 1<<31 - 1
	}
	return c
}
