// logic/spec.go
package logic

// MaxInputs bounds the input-channel list of one function.
const MaxInputs = 8

// MaxBreakpoints bounds a 1D table; MaxAxis bounds each 2D grid axis
// and MaxAxis3 each 3D grid axis. All table storage is inline so a
// loaded function list never allocates after construction.
const (
	MaxBreakpoints = 16
	MaxAxis        = 8
	MaxAxis3       = 4
)

// Table1D holds ordered breakpoints. X must be strictly increasing
// (validated by the config collaborator). Inputs outside the range
// clamp to the nearest edge value.
type Table1D struct {
	N int
	X [MaxBreakpoints]int32
	Y [MaxBreakpoints]int32
}

// Table2D is a bilinear lookup grid: Z[i][j] at (X[i], Y[j]).
type Table2D struct {
	NX, NY int
	X      [MaxAxis]int32
	Y      [MaxAxis]int32
	Z      [MaxAxis][MaxAxis]int32
}

// Table3D is a trilinear lookup grid: V[i][j][k] at (X[i], Y[j], Z[k]).
type Table3D struct {
	NX, NY, NZ int
	X          [MaxAxis3]int32
	Y          [MaxAxis3]int32
	Z          [MaxAxis3]int32
	V          [MaxAxis3][MaxAxis3][MaxAxis3]int32
}

// Params carries the operation-specific configuration. Only the fields
// the operation reads are meaningful; everything else is ignored.
type Params struct {
	// Comparisons: right-hand side when only one input channel is
	// configured. InRange/Hysteresis: inclusive Lower/Upper bounds.
	Rhs   int32
	Lower int32
	Upper int32

	// Scale: out = in*Num/Den + Offset (Den 0 is coerced to 1).
	Num    int32
	Den    int32
	Offset int32

	// Clamp / PID output / counter bounds.
	Min int32
	Max int32

	// Durations in milliseconds.
	OnMS       int32 // flasher on phase
	OffMS      int32 // flasher off phase
	DurationMS int32 // pulse width, delay thresholds, retrig window
	PresetMS   int32 // count-up saturation / count-down reload

	// Filters.
	WindowLen int
	Alpha     int32 // low-pass smoothing factor, per-mille (0..1000)

	// Counter / selector.
	First   int32
	Last    int32
	Default int32
	Step    int32

	// PID, gains per-mille (Kp=1500 means 1.5).
	Kp         int32
	Ki         int32
	Kd         int32
	DFiltAlpha int32 // derivative filter per-mille, 0 disables
	AntiWindup bool
	Reversed   bool

	// Tables, allocated once at load.
	T1 *Table1D
	T2 *Table2D
	T3 *Table3D
}

// FuncSpec is one configured logic function. Immutable once loaded;
// the whole list is replaced wholesale on reconfiguration.
type FuncSpec struct {
	Name      string
	Op        Op
	Output    uint16
	Inputs    [MaxInputs]uint16
	NumInputs int
	Enabled   bool
	Params    Params
}

// In returns the configured input ids as a bounded slice view.
func (f *FuncSpec) In() []uint16 {
	n := f.NumInputs
	if n < 0 {
		n = 0
	}
	if n > MaxInputs {
		n = MaxInputs
	}
	return f.Inputs[:n]
}
