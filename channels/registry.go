// channels/registry.go
package channels

import (
	"pdmcode-go/errcode"
	"pdmcode-go/x/mathx"
)

// Registry is the fixed-capacity addressable value space shared by the
// executor, the I/O collaborator and every read-only consumer. It is
// an explicitly owned instance, never a package-level singleton, so
// tests and the host simulator can run several independently.
//
// Concurrency contract: one writer per tick. The executor performs a
// full pass; the I/O collaborator calls UpdateValue only between
// passes. The Registry itself takes no locks — the host scheduler owns
// that guarantee (the engine service serialises both in one loop).
type Registry struct {
	slots [Capacity]slot
	count int
}

type slot struct {
	registered bool
	kind       Kind
	value      int32
	min, max   int32
	flags      Flags
	name       string
	unit       string
	binding    Binding
	sources    []uint16
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register installs a channel. It fails with CapacityExceeded when the
// table is full, InvalidRange when the id does not sit in the range
// declared for its kind, and DuplicateID when the slot is taken. The
// registry is unchanged on any failure.
func (r *Registry) Register(spec Spec) error {
	if r.count >= Capacity {
		return errcode.CapacityExceeded
	}
	if int(spec.ID) >= Capacity {
		return errcode.InvalidRange
	}
	k, ok := KindForID(spec.ID)
	if !ok || k != spec.Kind {
		return errcode.InvalidRange
	}
	s := &r.slots[spec.ID]
	if s.registered {
		return errcode.DuplicateID
	}
	s.registered = true
	s.kind = spec.Kind
	s.min = spec.Min
	s.max = spec.Max
	s.value = r.clampTo(spec, spec.Initial)
	s.flags = FlagEnabled
	s.name = spec.Name
	s.unit = spec.Unit
	s.binding = spec.Binding
	s.sources = spec.Sources
	r.count++
	return nil
}

// Value is the hot-path read: direct-indexed, O(1), no failure path.
// An unregistered or out-of-range id reads as the sentinel 0; Info is
// the fallible variant for callers that need to tell the difference.
func (r *Registry) Value(id uint16) int32 {
	if int(id) >= Capacity {
		return 0
	}
	return r.slots[id].value
}

// Registered reports whether id names a registered channel. O(1);
// safe for the tick path.
func (r *Registry) Registered(id uint16) bool {
	return int(id) < Capacity && r.slots[id].registered
}

// Info returns a snapshot of a registered channel, or ok=false.
func (r *Registry) Info(id uint16) (View, bool) {
	if int(id) >= Capacity || !r.slots[id].registered {
		return View{}, false
	}
	return r.mustView(id), true
}

// SetValue writes an engine-side result. Only PhysicalOutput and
// Virtual channels accept engine writes; PhysicalInput and System
// slots are owned by external collaborators.
func (r *Registry) SetValue(id uint16, v int32) error {
	if int(id) >= Capacity || !r.slots[id].registered {
		return errcode.UnknownChannel
	}
	s := &r.slots[id]
	if s.kind != PhysicalOutput && s.kind != Virtual {
		return errcode.InvalidDirection
	}
	s.value = clampSlot(s, v)
	return nil
}

// UpdateValue is the I/O-collaborator entrypoint: it pushes fresh
// samples into PhysicalInput slots (and System slots, which only
// external collaborators may write), bypassing the output-write guard.
func (r *Registry) UpdateValue(id uint16, v int32) error {
	if int(id) >= Capacity || !r.slots[id].registered {
		return errcode.UnknownChannel
	}
	s := &r.slots[id]
	if s.kind != PhysicalInput && s.kind != System {
		return errcode.InvalidDirection
	}
	s.value = clampSlot(s, v)
	s.flags &^= FlagStale
	return nil
}

// ByName finds a channel by its configured name. Linear scan; used at
// config and debug time only.
func (r *Registry) ByName(name string) (View, bool) {
	if name == "" {
		return View{}, false
	}
	for id := 0; id < Capacity; id++ {
		if r.slots[id].registered && r.slots[id].name == name {
			return r.mustView(uint16(id)), true
		}
	}
	return View{}, false
}

// Flags reads a channel's flag bits; unregistered ids read as zero.
func (r *Registry) Flags(id uint16) Flags {
	if int(id) >= Capacity {
		return 0
	}
	return r.slots[id].flags
}

// SetFlags replaces a channel's flag bits.
func (r *Registry) SetFlags(id uint16, f Flags) error {
	if int(id) >= Capacity || !r.slots[id].registered {
		return errcode.UnknownChannel
	}
	r.slots[id].flags = f
	return nil
}

// MarkFault sets or clears the fault bit, leaving the others alone.
func (r *Registry) MarkFault(id uint16, fault bool) error {
	if int(id) >= Capacity || !r.slots[id].registered {
		return errcode.UnknownChannel
	}
	if fault {
		r.slots[id].flags |= FlagFault
	} else {
		r.slots[id].flags &^= FlagFault
	}
	return nil
}

// Binding returns the hardware binding of a physical channel.
func (r *Registry) Binding(id uint16) (Binding, bool) {
	if int(id) >= Capacity || !r.slots[id].registered {
		return Binding{}, false
	}
	s := &r.slots[id]
	if s.kind != PhysicalInput && s.kind != PhysicalOutput {
		return Binding{}, false
	}
	return s.binding, true
}

// Count returns the number of registered channels.
func (r *Registry) Count() int { return r.count }

// Each visits every registered channel in id order until fn returns
// false. Diagnostics/telemetry only.
func (r *Registry) Each(fn func(View) bool) {
	for id := 0; id < Capacity; id++ {
		if !r.slots[id].registered {
			continue
		}
		if !fn(r.mustView(uint16(id))) {
			return
		}
	}
}

func (r *Registry) mustView(id uint16) View {
	s := &r.slots[id]
	return View{
		ID:    id,
		Kind:  s.kind,
		Name:  s.name,
		Unit:  s.unit,
		Min:   s.min,
		Max:   s.max,
		Value: s.value,
		Flags: s.flags,
	}
}

// clampSlot pins v to the channel's configured bounds. A min >= max
// pair means "unbounded".
func clampSlot(s *slot, v int32) int32 {
	if s.min >= s.max {
		return v
	}
	return mathx.Clamp(v, s.min, s.max)
}

func (r *Registry) clampTo(spec Spec, v int32) int32 {
	if spec.Min >= spec.Max {
		return v
	}
	return mathx.Clamp(v, spec.Min, spec.Max)
}
