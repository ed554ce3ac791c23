// channels/channel.go
package channels

// -----------------------------------------------------------------------------
// Kinds + id ranges
// -----------------------------------------------------------------------------

// Kind classifies a channel slot.
type Kind uint8

const (
	PhysicalInput Kind = iota
	PhysicalOutput
	Virtual
	System
)

func (k Kind) String() string {
	switch k {
	case PhysicalInput:
		return "physical_input"
	case PhysicalOutput:
		return "physical_output"
	case Virtual:
		return "virtual"
	case System:
		return "system"
	}
	return "unknown"
}

// Capacity is the fixed size of the addressable value space.
const Capacity = 1024

// Id ranges are partitioned by kind. A channel's id must sit in the
// range declared for its kind.
const (
	FirstInput   = 0
	LastInput    = 99
	FirstOutput  = 100
	LastOutput   = 199
	FirstVirtual = 200
	LastVirtual  = 999
	FirstSystem  = 1000
	LastSystem   = 1023
)

// KindForID returns the kind whose range contains id.
func KindForID(id uint16) (Kind, bool) {
	switch {
	case id <= LastInput:
		return PhysicalInput, true
	case id >= FirstOutput && id <= LastOutput:
		return PhysicalOutput, true
	case id >= FirstVirtual && id <= LastVirtual:
		return Virtual, true
	case id >= FirstSystem && id <= LastSystem:
		return System, true
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Flags
// -----------------------------------------------------------------------------

// Flags are side-channel state bits, independent of the channel value.
type Flags uint8

const (
	FlagEnabled Flags = 1 << 0
	FlagFault   Flags = 1 << 1
	FlagStale   Flags = 1 << 2
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// flagNames pairs flag bits with printable names (diagnostics only).
var flagNames = [...]struct {
	bit  Flags
	name string
}{
	{FlagEnabled, "enabled"},
	{FlagFault, "fault"},
	{FlagStale, "stale"},
}

func (f Flags) String() string {
	s := ""
	for _, e := range flagNames {
		if f&e.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += e.name
	}
	if s == "" {
		return "none"
	}
	return s
}

// -----------------------------------------------------------------------------
// Specs + views
// -----------------------------------------------------------------------------

// Binding names the hardware behind a physical channel.
type Binding struct {
	Device string `json:"device"`
	Index  int    `json:"index"`
}

// Spec describes one channel to be registered. Specs arrive from the
// config collaborator already validated; the Registry re-checks only
// the structural invariants it owns (id range, uniqueness, capacity).
type Spec struct {
	ID      uint16   `json:"id"`
	Kind    Kind     `json:"-"`
	Name    string   `json:"name,omitempty"`
	Unit    string   `json:"unit,omitempty"`
	Min     int32    `json:"min"`
	Max     int32    `json:"max"`
	Initial int32    `json:"initial,omitempty"`
	Binding Binding  `json:"binding,omitempty"` // physical kinds only
	Sources []uint16 `json:"sources,omitempty"` // virtual kind only
}

// View is a read-only snapshot of a registered channel, for
// diagnostics and telemetry. Not used on the tick path.
type View struct {
	ID    uint16 `json:"id"`
	Kind  Kind   `json:"kind"`
	Name  string `json:"name,omitempty"`
	Unit  string `json:"unit,omitempty"`
	Min   int32  `json:"min"`
	Max   int32  `json:"max"`
	Value int32  `json:"value"`
	Flags Flags  `json:"flags"`
}
