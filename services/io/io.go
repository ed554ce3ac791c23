// services/io/io.go
package io

import (
	"context"
	"time"

	"pdmcode-go/bus"
	"pdmcode-go/channels"
	"pdmcode-go/errcode"
	"pdmcode-go/services/config"
	"pdmcode-go/types"
	"pdmcode-go/x/timex"
)

// -----------------------------------------------------------------------------
// Devices
//
// A Device is one piece of acquisition or actuation hardware exposing
// indexed lanes: an ADC's mux channels, a GPIO bank's lines. Channel
// bindings (device name + index) come from the configuration; the
// service resolves them against the devices it was built with.
// -----------------------------------------------------------------------------

// InputDevice reads one fixed-point value per lane.
type InputDevice interface {
	ReadLane(index int) (int32, error)
}

// OutputDevice drives one value per lane. Digital devices treat any
// nonzero value as high.
type OutputDevice interface {
	WriteLane(index int, value int32) error
}

var (
	topicConfigEngine = bus.T("config", "engine")
	topicSamples      = bus.T("engine", "samples")
	topicOutputs      = bus.T("engine", "outputs")
)

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

type binding struct {
	id    uint16
	index int
	in    InputDevice
	out   OutputDevice
}

// Service sweeps bound input devices between engine ticks and mirrors
// post-pass output levels back to hardware.
type Service struct {
	conn    *bus.Connection
	inputs  map[string]InputDevice
	outputs map[string]OutputDevice

	sampleMS int32
	inBinds  []binding
	outBinds map[uint16]binding
}

func NewService(conn *bus.Connection) *Service {
	return &Service{
		conn:     conn,
		inputs:   map[string]InputDevice{},
		outputs:  map[string]OutputDevice{},
		sampleMS: 10,
		outBinds: map[uint16]binding{},
	}
}

// AddInputDevice registers acquisition hardware under a config-visible
// name. Call before Start.
func (s *Service) AddInputDevice(name string, dev InputDevice) error {
	if _, dup := s.inputs[name]; dup {
		return &errcode.E{C: errcode.DuplicateID, Op: "io.add", Msg: name}
	}
	s.inputs[name] = dev
	return nil
}

// AddOutputDevice registers actuation hardware under a config-visible
// name. Call before Start.
func (s *Service) AddOutputDevice(name string, dev OutputDevice) error {
	if _, dup := s.outputs[name]; dup {
		return &errcode.E{C: errcode.DuplicateID, Op: "io.add", Msg: name}
	}
	s.outputs[name] = dev
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigEngine)
	defer s.conn.Unsubscribe(cfgSub)
	outSub := s.conn.Subscribe(topicOutputs)
	defer s.conn.Unsubscribe(outSub)

	tick := time.NewTicker(time.Duration(s.sampleMS) * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cfgSub.Channel():
			if loaded, ok := msg.Payload.(*config.Loaded); ok {
				s.rebind(loaded)
				tick.Reset(time.Duration(s.sampleMS) * time.Millisecond)
			}
		case msg := <-outSub.Channel():
			if levels, ok := msg.Payload.([]types.OutputLevel); ok {
				s.mirror(levels)
			}
		case <-tick.C:
			s.sweep()
		}
	}
}

// rebind resolves config bindings against the installed devices.
// Channels naming unknown devices are left unbound; they read stale.
func (s *Service) rebind(loaded *config.Loaded) {
	s.sampleMS = loaded.TickMS
	s.inBinds = s.inBinds[:0]
	s.outBinds = map[uint16]binding{}

	for _, spec := range loaded.Channels {
		if spec.Binding.Device == "" {
			continue
		}
		switch spec.Kind {
		case channels.PhysicalInput:
			if dev, ok := s.inputs[spec.Binding.Device]; ok {
				s.inBinds = append(s.inBinds, binding{
					id: spec.ID, index: spec.Binding.Index, in: dev,
				})
			}
		case channels.PhysicalOutput:
			if dev, ok := s.outputs[spec.Binding.Device]; ok {
				s.outBinds[spec.ID] = binding{
					id: spec.ID, index: spec.Binding.Index, out: dev,
				}
			}
		}
	}
}

// sweep reads every bound input lane and hands the batch to the
// engine. Read failures drop the sample; the channel's stale flag
// stays set until a good reading lands.
func (s *Service) sweep() {
	if len(s.inBinds) == 0 {
		return
	}
	now := timex.NowMs()
	batch := make(types.SampleBatch, 0, len(s.inBinds))
	for _, b := range s.inBinds {
		v, err := b.in.ReadLane(b.index)
		if err != nil {
			continue
		}
		batch = append(batch, types.InputSample{ID: b.id, Value: v, TS: now})
	}
	if len(batch) > 0 {
		s.conn.Publish(s.conn.NewMessage(topicSamples, batch, false))
	}
}

// mirror pushes post-pass levels to hardware. Disabled or faulted
// outputs are driven to 0 regardless of their channel value.
func (s *Service) mirror(levels []types.OutputLevel) {
	for _, lvl := range levels {
		b, ok := s.outBinds[lvl.ID]
		if !ok {
			continue
		}
		v := lvl.Value
		if !lvl.Enabled || lvl.Fault {
			v = 0
		}
		_ = b.out.WriteLane(b.index, v)
	}
}
