// services/config/validate.go
package config

import (
	"fmt"

	"pdmcode-go/channels"
	"pdmcode-go/errcode"
	"pdmcode-go/logic"
	"pdmcode-go/types"
	"pdmcode-go/x/window"
)

func parseKind(s string) (channels.Kind, bool) {
	switch s {
	case "input", "physical_input":
		return channels.PhysicalInput, true
	case "output", "physical_output":
		return channels.PhysicalOutput, true
	case "virtual":
		return channels.Virtual, true
	case "system":
		return channels.System, true
	}
	return 0, false
}

func fail(c errcode.Code, format string, args ...any) error {
	return &errcode.E{C: c, Op: "config.load", Msg: fmt.Sprintf(format, args...)}
}

// build validates a parsed document and assembles the engine-ready
// specs. All-or-nothing: the first error aborts the load.
func build(doc *Document) (*Loaded, error) {
	tick := doc.Engine.TickMS
	if tick <= 0 {
		tick = 10
	}
	maxDelta := doc.Engine.MaxDeltaMS
	if maxDelta <= 0 {
		maxDelta = 4 * tick
	}

	if len(doc.Channels) > channels.Capacity {
		return nil, fail(errcode.CapacityExceeded, "%d channels exceed the %d-slot table",
			len(doc.Channels), channels.Capacity)
	}

	loaded := &Loaded{TickMS: tick, MaxDeltaMS: maxDelta}
	seen := map[uint16]channels.Kind{}

	for _, cd := range doc.Channels {
		kind, ok := parseKind(cd.Kind)
		if !ok {
			return nil, fail(errcode.InvalidPayload, "channel %d: unknown kind %q", cd.ID, cd.Kind)
		}
		if cd.ID < 0 || cd.ID >= channels.Capacity {
			return nil, fail(errcode.InvalidRange, "channel id %d outside 0..%d", cd.ID, channels.Capacity-1)
		}
		id := uint16(cd.ID)
		if want, ok := channels.KindForID(id); !ok || want != kind {
			return nil, fail(errcode.InvalidRange, "channel %d: id not in the %s range", cd.ID, cd.Kind)
		}
		if _, dup := seen[id]; dup {
			return nil, fail(errcode.DuplicateID, "channel id %d declared twice", cd.ID)
		}
		seen[id] = kind

		spec := channels.Spec{
			ID:      id,
			Kind:    kind,
			Name:    cd.Name,
			Unit:    cd.Unit,
			Min:     cd.Min,
			Max:     cd.Max,
			Initial: cd.Initial,
			Binding: channels.Binding{Device: cd.Device, Index: cd.Index},
		}
		for _, src := range cd.Sources {
			if src < 0 || src >= channels.Capacity {
				return nil, fail(errcode.DanglingRef, "channel %d: source id %d out of range", cd.ID, src)
			}
			spec.Sources = append(spec.Sources, uint16(src))
		}
		loaded.Channels = append(loaded.Channels, spec)
	}

	// Sources must name declared channels.
	for _, spec := range loaded.Channels {
		for _, src := range spec.Sources {
			if _, ok := seen[src]; !ok {
				return nil, fail(errcode.DanglingRef, "channel %d: source %d not declared", spec.ID, src)
			}
		}
	}

	producer := map[uint16]int{} // output id -> function index
	for i, fd := range doc.Functions {
		fs, err := buildFunction(i, &fd, seen)
		if err != nil {
			return nil, err
		}
		if prev, dup := producer[fs.Output]; dup {
			return nil, fail(errcode.DuplicateID,
				"functions %d and %d both drive channel %d", prev, i, fs.Output)
		}
		producer[fs.Output] = i
		loaded.Functions = append(loaded.Functions, fs)
	}

	if err := rejectCycles(loaded.Functions, producer); err != nil {
		return nil, err
	}

	for i, sd := range doc.Shedding {
		rule, err := buildShedRule(i, &sd, seen)
		if err != nil {
			return nil, err
		}
		loaded.Shedding = append(loaded.Shedding, rule)
	}

	return loaded, nil
}

func buildFunction(i int, fd *FunctionDoc, seen map[uint16]channels.Kind) (logic.FuncSpec, error) {
	var fs logic.FuncSpec

	op, ok := logic.ParseOp(fd.Op)
	if !ok {
		return fs, fail(errcode.UnknownOp, "function %d: unknown op %q", i, fd.Op)
	}
	fs.Op = op
	fs.Name = fd.Name
	fs.Enabled = fd.Enabled == nil || *fd.Enabled

	if len(fd.Inputs) > logic.MaxInputs {
		return fs, fail(errcode.InvalidParams, "function %d: %d inputs exceed the limit of %d",
			i, len(fd.Inputs), logic.MaxInputs)
	}
	if len(fd.Inputs) < op.MinInputs() {
		return fs, fail(errcode.InvalidParams, "function %d: op %q needs at least %d inputs",
			i, fd.Op, op.MinInputs())
	}
	for j, in := range fd.Inputs {
		if in < 0 || in >= channels.Capacity {
			return fs, fail(errcode.DanglingRef, "function %d: input id %d out of range", i, in)
		}
		if _, ok := seen[uint16(in)]; !ok {
			return fs, fail(errcode.DanglingRef, "function %d: input channel %d not declared", i, in)
		}
		fs.Inputs[j] = uint16(in)
	}
	fs.NumInputs = len(fd.Inputs)

	if fd.Output < 0 || fd.Output >= channels.Capacity {
		return fs, fail(errcode.DanglingRef, "function %d: output id %d out of range", i, fd.Output)
	}
	outKind, ok := seen[uint16(fd.Output)]
	if !ok {
		return fs, fail(errcode.DanglingRef, "function %d: output channel %d not declared", i, fd.Output)
	}
	if outKind != channels.PhysicalOutput && outKind != channels.Virtual {
		return fs, fail(errcode.InvalidDirection,
			"function %d: output channel %d is %s, not writable by the engine", i, fd.Output, outKind)
	}
	fs.Output = uint16(fd.Output)

	if err := buildParams(i, op, &fd.Params, &fs.Params); err != nil {
		return fs, err
	}
	return fs, nil
}

func buildParams(i int, op logic.Op, pd *ParamsDoc, p *logic.Params) error {
	p.Rhs = pd.Rhs
	p.Lower = pd.Lower
	p.Upper = pd.Upper
	p.Num = pd.Num
	p.Den = pd.Den
	p.Offset = pd.Offset
	p.Min = pd.Min
	p.Max = pd.Max
	p.OnMS = pd.OnMS
	p.OffMS = pd.OffMS
	p.DurationMS = pd.DurationMS
	p.PresetMS = pd.PresetMS
	p.WindowLen = pd.Window
	p.Alpha = pd.Alpha
	p.First = pd.First
	p.Last = pd.Last
	p.Default = pd.Default
	p.Step = pd.Step
	p.Kp = pd.Kp
	p.Ki = pd.Ki
	p.Kd = pd.Kd
	p.DFiltAlpha = pd.DFiltAlpha
	p.AntiWindup = pd.AntiWindup
	p.Reversed = pd.Reversed

	switch op {
	case logic.OpInRange, logic.OpHysteresis:
		if pd.Lower > pd.Upper {
			return fail(errcode.InvalidParams, "function %d: lower %d above upper %d", i, pd.Lower, pd.Upper)
		}
	case logic.OpPulse, logic.OpDelayOn, logic.OpDelayOff, logic.OpRetrigTimer:
		if pd.DurationMS <= 0 {
			return fail(errcode.InvalidParams, "function %d: duration_ms must be positive", i)
		}
	case logic.OpFlasher:
		if pd.OnMS <= 0 || pd.OffMS < 0 {
			return fail(errcode.InvalidParams, "function %d: flasher needs on_ms > 0", i)
		}
	case logic.OpCountUpTimer, logic.OpCountDownTimer:
		if pd.PresetMS < 0 {
			return fail(errcode.InvalidParams, "function %d: preset_ms must not be negative", i)
		}
	case logic.OpMovingAvg, logic.OpMedian, logic.OpMinWindow, logic.OpMaxWindow:
		if pd.Window < 1 || pd.Window > window.MaxLen {
			return fail(errcode.InvalidParams, "function %d: window must be 1..%d", i, window.MaxLen)
		}
	case logic.OpLowPass:
		if pd.Alpha < 0 || pd.Alpha > 1000 {
			return fail(errcode.InvalidParams, "function %d: alpha must be 0..1000 per-mille", i)
		}
	case logic.OpSelector:
		if pd.First > pd.Last {
			return fail(errcode.InvalidParams, "function %d: first %d above last %d", i, pd.First, pd.Last)
		}
		if pd.Default < pd.First || pd.Default > pd.Last {
			return fail(errcode.InvalidParams, "function %d: default outside [first, last]", i)
		}
	case logic.OpTable1D:
		t1, err := buildTable1D(i, pd.Table)
		if err != nil {
			return err
		}
		p.T1 = t1
	case logic.OpTable2D:
		t2, err := buildTable2D(i, pd.Table)
		if err != nil {
			return err
		}
		p.T2 = t2
	case logic.OpTable3D:
		t3, err := buildTable3D(i, pd.Table)
		if err != nil {
			return err
		}
		p.T3 = t3
	}
	return nil
}

func ascending(axis []int32) bool {
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return false
		}
	}
	return true
}

func buildTable1D(i int, td *TableDoc) (*logic.Table1D, error) {
	if td == nil || len(td.X) == 0 {
		return nil, fail(errcode.InvalidParams, "function %d: table_1d needs breakpoints", i)
	}
	if len(td.X) > logic.MaxBreakpoints || len(td.Y) != len(td.X) {
		return nil, fail(errcode.InvalidParams,
			"function %d: table_1d needs matching x/y lists of at most %d points", i, logic.MaxBreakpoints)
	}
	if !ascending(td.X) {
		return nil, fail(errcode.InvalidParams, "function %d: table_1d x axis must be strictly increasing", i)
	}
	t := &logic.Table1D{N: len(td.X)}
	copy(t.X[:], td.X)
	copy(t.Y[:], td.Y)
	return t, nil
}

func buildTable2D(i int, td *TableDoc) (*logic.Table2D, error) {
	if td == nil || len(td.X) == 0 || len(td.Y) == 0 {
		return nil, fail(errcode.InvalidParams, "function %d: table_2d needs x and y axes", i)
	}
	if len(td.X) > logic.MaxAxis || len(td.Y) > logic.MaxAxis {
		return nil, fail(errcode.InvalidParams, "function %d: table_2d axes capped at %d points", i, logic.MaxAxis)
	}
	if !ascending(td.X) || !ascending(td.Y) {
		return nil, fail(errcode.InvalidParams, "function %d: table_2d axes must be strictly increasing", i)
	}
	if len(td.Rows) != len(td.X) {
		return nil, fail(errcode.InvalidParams, "function %d: table_2d needs one row per x breakpoint", i)
	}
	t := &logic.Table2D{NX: len(td.X), NY: len(td.Y)}
	copy(t.X[:], td.X)
	copy(t.Y[:], td.Y)
	for xi, row := range td.Rows {
		if len(row) != len(td.Y) {
			return nil, fail(errcode.InvalidParams, "function %d: table_2d row %d length mismatch", i, xi)
		}
		copy(t.Z[xi][:], row)
	}
	return t, nil
}

func buildTable3D(i int, td *TableDoc) (*logic.Table3D, error) {
	if td == nil || len(td.X) == 0 || len(td.Y) == 0 || len(td.Z) == 0 {
		return nil, fail(errcode.InvalidParams, "function %d: table_3d needs x, y and z axes", i)
	}
	if len(td.X) > logic.MaxAxis3 || len(td.Y) > logic.MaxAxis3 || len(td.Z) > logic.MaxAxis3 {
		return nil, fail(errcode.InvalidParams, "function %d: table_3d axes capped at %d points", i, logic.MaxAxis3)
	}
	if !ascending(td.X) || !ascending(td.Y) || !ascending(td.Z) {
		return nil, fail(errcode.InvalidParams, "function %d: table_3d axes must be strictly increasing", i)
	}
	if len(td.Cells) != len(td.X) {
		return nil, fail(errcode.InvalidParams, "function %d: table_3d needs one cell plane per x breakpoint", i)
	}
	t := &logic.Table3D{NX: len(td.X), NY: len(td.Y), NZ: len(td.Z)}
	copy(t.X[:], td.X)
	copy(t.Y[:], td.Y)
	copy(t.Z[:], td.Z)
	for xi, plane := range td.Cells {
		if len(plane) != len(td.Y) {
			return nil, fail(errcode.InvalidParams, "function %d: table_3d plane %d length mismatch", i, xi)
		}
		for yi, row := range plane {
			if len(row) != len(td.Z) {
				return nil, fail(errcode.InvalidParams, "function %d: table_3d row %d/%d length mismatch", i, xi, yi)
			}
			copy(t.V[xi][yi][:], row)
		}
	}
	return t, nil
}

// rejectCycles walks the producer graph: function A depends on B when
// one of A's inputs is B's output. Cyclic graphs — including
// self-feedback — are a config-authoring error; the engine never
// detects them at runtime.
func rejectCycles(fns []logic.FuncSpec, producer map[uint16]int) error {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make([]int, len(fns))

	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = grey
		for _, in := range fns[i].In() {
			j, ok := producer[in]
			if !ok {
				continue
			}
			switch color[j] {
			case grey:
				return false
			case white:
				if !visit(j) {
					return false
				}
			}
		}
		color[i] = black
		return true
	}

	for i := range fns {
		if color[i] == white && !visit(i) {
			return fail(errcode.CyclicGraph, "function %d participates in a dependency cycle", i)
		}
	}
	return nil
}

func buildShedRule(i int, sd *ShedDoc, seen map[uint16]channels.Kind) (types.ShedRule, error) {
	var rule types.ShedRule
	if sd.Output < 0 || sd.Output >= channels.Capacity {
		return rule, fail(errcode.DanglingRef, "shed rule %d: output id %d out of range", i, sd.Output)
	}
	if kind, ok := seen[uint16(sd.Output)]; !ok || kind != channels.PhysicalOutput {
		return rule, fail(errcode.DanglingRef, "shed rule %d: output %d is not a declared physical output", i, sd.Output)
	}
	if sd.CurrentChan < 0 || sd.CurrentChan >= channels.Capacity {
		return rule, fail(errcode.DanglingRef, "shed rule %d: current channel %d out of range", i, sd.CurrentChan)
	}
	if _, ok := seen[uint16(sd.CurrentChan)]; !ok {
		return rule, fail(errcode.DanglingRef, "shed rule %d: current channel %d not declared", i, sd.CurrentChan)
	}
	if sd.LimitMilliA <= 0 {
		return rule, fail(errcode.InvalidParams, "shed rule %d: limit_mA must be positive", i)
	}
	restore := sd.RestoreMilliA
	if restore <= 0 || restore > sd.LimitMilliA {
		restore = sd.LimitMilliA * 9 / 10
	}
	rule = types.ShedRule{
		Output:        uint16(sd.Output),
		CurrentChan:   uint16(sd.CurrentChan),
		LimitMilliA:   sd.LimitMilliA,
		RestoreMilliA: restore,
		Priority:      sd.Priority,
		HoldMS:        sd.HoldMS,
		RetryMS:       sd.RetryMS,
	}
	return rule, nil
}
