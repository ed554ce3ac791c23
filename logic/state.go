// logic/state.go
package logic

import "pdmcode-go/x/window"

// stateMagic is the canary stamped into every live state block. A
// mismatch during a pass means the state table has been structurally
// corrupted; the executor then freezes outputs until an explicit
// Reset, and never reads or writes past a bad block.
const stateMagic uint32 = 0x5D1C0DE5

// State is the per-function runtime history. One block per configured
// function, indexed by the function's position in the list, owned
// exclusively by that function's evaluator during its tick slot.
type State struct {
	magic uint32

	// Previous samples for edge detection. prevA tracks input 0,
	// prevB input 1 (counter and selector use both).
	prevA int32
	prevB int32

	// Held output for latching/oscillating operations.
	out int32

	// Timer accumulation, externally clocked via deltaMS.
	elapsedMS int32
	active    bool

	// PID.
	integ   int64
	prevErr int32
	dFilt   int32
	primed  bool

	// Filter window.
	win window.W
}

// initState prepares a block for a freshly loaded function.
func initState(st *State, spec *FuncSpec) {
	*st = State{magic: stateMagic}
	switch spec.Op {
	case OpMovingAvg, OpMedian, OpMinWindow, OpMaxWindow:
		st.win.Reset(spec.Params.WindowLen)
	case OpCountDownTimer:
		st.elapsedMS = spec.Params.PresetMS
	case OpCounter, OpSelector:
		st.out = spec.Params.Default
	}
}

// ok reports the canary intact.
func (st *State) ok() bool { return st.magic == stateMagic }
