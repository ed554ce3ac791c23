// logic/executor.go
package logic

import "pdmcode-go/channels"

// Diag is the executor's degradation ledger. Counters only ever grow;
// nothing in here aborts a pass.
type Diag struct {
	Passes     uint64 // completed full passes
	Skipped    uint64 // disabled functions skipped
	UnknownOp  uint64 // unrecognised op codes degraded to no-ops
	BadChannel uint64 // unregistered input/output ids degraded to no-ops
	BadSpec    uint64 // functions with too few inputs for their op
	Frozen     bool   // fatal state-table corruption detected
}

// Executor drives one full evaluation pass per tick over a fixed,
// configuration-determined function order. It owns the runtime-state
// table; the Registry is borrowed, never shared mid-pass.
//
// Ordering contract: results are written back eagerly, so a function
// earlier in the list feeds later ones within the same tick, while a
// later function feeds earlier ones only on the next tick. The config
// authoring tool owns that ordering (and cycle rejection); the
// executor just honours the list.
type Executor struct {
	reg    *channels.Registry
	specs  []FuncSpec
	states []State
	diag   Diag
	frozen bool
	inBuf  [MaxInputs]int32
}

// NewExecutor binds a validated function list to a registry. The
// runtime-state table is allocated here, once; a pass allocates
// nothing.
func NewExecutor(reg *channels.Registry, specs []FuncSpec) *Executor {
	e := &Executor{
		reg:    reg,
		specs:  specs,
		states: make([]State, len(specs)),
	}
	for i := range specs {
		initState(&e.states[i], &specs[i])
	}
	return e
}

// Pass runs one tick. deltaMS is the externally measured elapsed time
// since the previous pass — the executor never reads a clock. Each
// function reads its inputs from the registry, evaluates, and writes
// its result back before the next function runs. Per-function faults
// are isolated: they increment a Diag counter and leave that
// function's output channel untouched.
func (e *Executor) Pass(deltaMS int32) {
	if e.frozen {
		return
	}
	if deltaMS < 0 {
		deltaMS = 0
	}

	for i := range e.specs {
		spec := &e.specs[i]
		if !spec.Enabled {
			e.diag.Skipped++
			continue
		}
		st := &e.states[i]
		if !st.ok() {
			// Structural corruption: freeze outputs at last-known-good
			// values until an explicit Reset.
			e.frozen = true
			e.diag.Frozen = true
			return
		}

		ids := spec.In()
		if len(ids) < spec.Op.MinInputs() {
			e.diag.BadSpec++
			continue
		}
		ok := e.reg.Registered(spec.Output)
		for j, id := range ids {
			if !e.reg.Registered(id) {
				ok = false
				break
			}
			e.inBuf[j] = e.reg.Value(id)
		}
		if !ok {
			e.diag.BadChannel++
			continue
		}

		out, known := evaluate(spec, e.inBuf[:len(ids)], st, deltaMS)
		if !known {
			e.diag.UnknownOp++
			continue
		}
		if err := e.reg.SetValue(spec.Output, out); err != nil {
			e.diag.BadChannel++
		}
	}
	e.diag.Passes++
}

// Diag returns a copy of the degradation counters.
func (e *Executor) Diag() Diag { return e.diag }

// Frozen reports the fatal freeze state.
func (e *Executor) Frozen() bool { return e.frozen }

// Functions returns the configured function count.
func (e *Executor) Functions() int { return len(e.specs) }

// Reset reinitialises every runtime-state block and unfreezes the
// executor. Channel values are left as they are — outputs resume from
// last-known-good on the next pass.
func (e *Executor) Reset() {
	for i := range e.specs {
		initState(&e.states[i], &e.specs[i])
	}
	e.frozen = false
	e.diag.Frozen = false
}

// corruptState is a test hook: it stomps one state block's canary.
func (e *Executor) corruptState(i int) {
	if i >= 0 && i < len(e.states) {
		e.states[i].magic = 0
	}
}
