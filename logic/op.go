// logic/op.go
package logic

// Op identifies one evaluator. The executor dispatches on it with an
// exhaustive switch; an unrecognised value degrades to a counted no-op
// rather than aborting the pass.
type Op uint8

const (
	OpNone Op = iota

	// Boolean (nonzero = true, output 0/1).
	OpAnd
	OpOr
	OpXor
	OpNand
	OpNor
	OpNot

	// Comparison.
	OpEqual
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpInRange

	// Edge detection (one-tick pulse).
	OpEdgeRising
	OpEdgeFalling

	// Arithmetic (saturating).
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpMin
	OpMax
	OpAverage
	OpAbs
	OpScale
	OpClamp

	// Stateful switches.
	OpToggle
	OpSetResetLatch
	OpPulse
	OpFlasher
	OpHysteresis

	// Timers (elapsed time from caller-supplied delta, never self-timed).
	OpDelayOn
	OpDelayOff
	OpCountUpTimer
	OpCountDownTimer
	OpRetrigTimer
	OpStopwatch

	// Lookup tables.
	OpTable1D
	OpTable2D
	OpTable3D

	// Windowed filters.
	OpMovingAvg
	OpLowPass
	OpMedian
	OpMinWindow
	OpMaxWindow

	// Control.
	OpPID
	OpCounter
	OpSelector

	opSentinel // keep last
)

// NumOps is the count of defined operations (excluding OpNone).
const NumOps = int(opSentinel) - 1

var opNames = [...]string{
	OpNone:           "none",
	OpAnd:            "and",
	OpOr:             "or",
	OpXor:            "xor",
	OpNand:           "nand",
	OpNor:            "nor",
	OpNot:            "not",
	OpEqual:          "equal",
	OpNotEqual:       "not_equal",
	OpLess:           "less",
	OpGreater:        "greater",
	OpLessEqual:      "less_equal",
	OpGreaterEqual:   "greater_equal",
	OpInRange:        "in_range",
	OpEdgeRising:     "edge_rising",
	OpEdgeFalling:    "edge_falling",
	OpAdd:            "add",
	OpSubtract:       "subtract",
	OpMultiply:       "multiply",
	OpDivide:         "divide",
	OpMin:            "min",
	OpMax:            "max",
	OpAverage:        "average",
	OpAbs:            "abs",
	OpScale:          "scale",
	OpClamp:          "clamp",
	OpToggle:         "toggle",
	OpSetResetLatch:  "set_reset_latch",
	OpPulse:          "pulse",
	OpFlasher:        "flasher",
	OpHysteresis:     "hysteresis",
	OpDelayOn:        "delay_on",
	OpDelayOff:       "delay_off",
	OpCountUpTimer:   "count_up_timer",
	OpCountDownTimer: "count_down_timer",
	OpRetrigTimer:    "retrig_timer",
	OpStopwatch:      "stopwatch",
	OpTable1D:        "table_1d",
	OpTable2D:        "table_2d",
	OpTable3D:        "table_3d",
	OpMovingAvg:      "moving_avg",
	OpLowPass:        "low_pass",
	OpMedian:         "median",
	OpMinWindow:      "min_window",
	OpMaxWindow:      "max_window",
	OpPID:            "pid",
	OpCounter:        "counter",
	OpSelector:       "selector",
}

func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return "unknown"
}

// ParseOp resolves a config-file operation name.
func ParseOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name && Op(op) != OpNone {
			return Op(op), true
		}
	}
	return OpNone, false
}

// Stateful reports whether the operation carries per-function runtime
// history between ticks.
func (o Op) Stateful() bool {
	switch o {
	case OpEdgeRising, OpEdgeFalling,
		OpToggle, OpSetResetLatch, OpPulse, OpFlasher, OpHysteresis,
		OpDelayOn, OpDelayOff, OpCountUpTimer, OpCountDownTimer,
		OpRetrigTimer, OpStopwatch,
		OpMovingAvg, OpLowPass, OpMedian, OpMinWindow, OpMaxWindow,
		OpPID, OpCounter, OpSelector:
		return true
	}
	return false
}

// MinInputs returns how many input channels the operation requires.
func (o Op) MinInputs() int {
	switch o {
	case OpNot, OpAbs, OpScale, OpClamp, OpInRange,
		OpEdgeRising, OpEdgeFalling, OpToggle, OpPulse, OpFlasher,
		OpHysteresis, OpDelayOn, OpDelayOff, OpRetrigTimer,
		OpTable1D, OpMovingAvg, OpLowPass, OpMedian, OpMinWindow,
		OpMaxWindow, OpCounter, OpSelector,
		OpCountUpTimer, OpCountDownTimer, OpStopwatch,
		// Comparisons accept a single input compared against
		// Params.Rhs when no second channel is configured.
		OpEqual, OpNotEqual, OpLess, OpGreater, OpLessEqual,
		OpGreaterEqual:
		return 1
	case OpAnd, OpOr, OpXor, OpNand, OpNor,
		OpAdd, OpSubtract, OpMultiply, OpDivide,
		OpMin, OpMax, OpAverage, OpSetResetLatch, OpTable2D, OpPID:
		return 2
	case OpTable3D:
		return 3
	}
	return 0
}
