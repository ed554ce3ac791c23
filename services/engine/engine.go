// services/engine/engine.go
package engine

import (
	"context"
	"sync"
	"time"

	"pdmcode-go/bus"
	"pdmcode-go/channels"
	"pdmcode-go/errcode"
	"pdmcode-go/logic"
	"pdmcode-go/services/config"
	"pdmcode-go/types"
	"pdmcode-go/x/timex"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

var (
	topicConfigEngine = bus.T("config", "engine")
	topicSamples      = bus.T("engine", "samples")
	topicCommand      = bus.T("engine", "command")
	topicState        = bus.T("engine", "state")
	topicDiag         = bus.T("engine", "diag")
	topicSnapshot     = bus.T("engine", "snapshot")
	topicOutputs      = bus.T("engine", "outputs")
)

// Guard is applied after every pass, before outputs are mirrored to
// hardware. The protection service implements it to shed overloaded
// outputs; a nil guard is a no-op.
type Guard interface {
	Apply(reg *channels.Registry, deltaMS int32)
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

// Service owns the channel registry and the executor. Everything that
// mutates engine state funnels through its single loop (or, for the
// host simulator, through the synchronous Apply/Step entry points), so
// the registry's one-writer contract holds.
type Service struct {
	conn  *bus.Connection
	guard Guard

	mu         sync.Mutex
	reg        *channels.Registry
	ex         *logic.Executor
	tickMS     int32
	maxDeltaMS int32
	prevMS     int64
	diagAccMS  int32
}

type Option func(*Service)

// WithGuard installs the post-pass protection hook.
func WithGuard(g Guard) Option {
	return func(s *Service) { s.guard = g }
}

func NewService(conn *bus.Connection, opts ...Option) *Service {
	s := &Service{conn: conn, tickMS: 10, maxDeltaMS: 40}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start launches the service loop.
func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigEngine)
	defer s.conn.Unsubscribe(cfgSub)
	smpSub := s.conn.Subscribe(topicSamples)
	defer s.conn.Unsubscribe(smpSub)
	cmdSub := s.conn.Subscribe(topicCommand)
	defer s.conn.Unsubscribe(cmdSub)

	s.publishState("idle", "awaiting_config")

	tick := time.NewTicker(time.Duration(s.tickMS) * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "context_cancelled")
			return
		case msg := <-cfgSub.Channel():
			loaded, ok := msg.Payload.(*config.Loaded)
			if !ok {
				s.publishState("error", "config_payload_type")
				continue
			}
			if err := s.Apply(loaded); err != nil {
				s.publishState("error", string(errcode.Of(err)))
				continue
			}
			tick.Reset(time.Duration(loaded.TickMS) * time.Millisecond)
			s.publishState("running", "config_applied")
		case msg := <-smpSub.Channel():
			if batch, ok := msg.Payload.(types.SampleBatch); ok {
				s.Ingest(batch)
			}
		case msg := <-cmdSub.Channel():
			s.handleCommand(msg.Payload)
		case <-tick.C:
			now := timex.NowMs()
			s.mu.Lock()
			delta := timex.TickDeltaMS(s.prevMS, now, s.maxDeltaMS)
			s.prevMS = now
			s.mu.Unlock()
			s.Step(delta)
		}
	}
}

func (s *Service) handleCommand(payload any) {
	cmd, ok := payload.(string)
	if !ok {
		return
	}
	switch cmd {
	case "reset":
		s.mu.Lock()
		if s.ex != nil {
			s.ex.Reset()
		}
		s.mu.Unlock()
		s.publishState("running", "reset")
	case "diag":
		s.publishDiag()
	}
}

// -----------------------------------------------------------------------------
// Synchronous core (shared by the loop and the host simulator)
// -----------------------------------------------------------------------------

// Apply swaps in a validated configuration wholesale. The old registry
// and executor are discarded together so stale function state can never
// leak across configurations.
func (s *Service) Apply(loaded *config.Loaded) error {
	reg := channels.NewRegistry()
	for _, spec := range loaded.Channels {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	ex := logic.NewExecutor(reg, loaded.Functions)

	s.mu.Lock()
	s.reg = reg
	s.ex = ex
	s.tickMS = loaded.TickMS
	s.maxDeltaMS = loaded.MaxDeltaMS
	s.prevMS = 0
	s.mu.Unlock()
	return nil
}

// Ingest applies a batch of fresh hardware samples between passes.
// Unknown ids mark nothing; individual failures do not abort the batch.
func (s *Service) Ingest(batch types.SampleBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reg == nil {
		return
	}
	for _, smp := range batch {
		_ = s.reg.UpdateValue(smp.ID, smp.Value)
	}
}

// Step runs one pass with a caller-supplied delta and publishes the
// post-pass surfaces. The simulator drives this directly with a fixed
// delta for reproducible runs.
func (s *Service) Step(deltaMS int32) {
	s.mu.Lock()
	if s.ex == nil {
		s.mu.Unlock()
		return
	}
	s.ex.Pass(deltaMS)
	if s.guard != nil {
		s.guard.Apply(s.reg, deltaMS)
	}
	frozen := s.ex.Frozen()
	s.diagAccMS += deltaMS
	publishDiag := s.diagAccMS >= 1000
	if publishDiag {
		s.diagAccMS = 0
	}
	s.mu.Unlock()

	s.publishOutputs()
	s.publishSnapshot()
	if frozen {
		s.publishState("frozen", "state_corrupt")
	}
	if publishDiag {
		s.publishDiag()
	}
}

// Registry exposes the live registry for read-only collaborators. May
// be nil before the first configuration.
func (s *Service) Registry() *channels.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg
}

// Diag returns the executor's degradation counters.
func (s *Service) Diag() logic.Diag {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ex == nil {
		return logic.Diag{}
	}
	return s.ex.Diag()
}

// -----------------------------------------------------------------------------
// Published surfaces
// -----------------------------------------------------------------------------

func (s *Service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(topicState, types.EngineState{
		Level:  level,
		Status: status,
		TS:     timex.NowMs(),
	}, true))
}

func (s *Service) publishDiag() {
	s.mu.Lock()
	var d logic.Diag
	var fns, chs int
	if s.ex != nil {
		d = s.ex.Diag()
		fns = s.ex.Functions()
	}
	if s.reg != nil {
		chs = s.reg.Count()
	}
	s.mu.Unlock()

	s.conn.Publish(s.conn.NewMessage(topicDiag, types.EngineDiag{
		Passes:     d.Passes,
		Skipped:    d.Skipped,
		UnknownOp:  d.UnknownOp,
		BadChannel: d.BadChannel,
		BadSpec:    d.BadSpec,
		Frozen:     d.Frozen,
		Functions:  fns,
		Channels:   chs,
		TS:         timex.NowMs(),
	}, true))
}

func (s *Service) publishOutputs() {
	s.mu.Lock()
	reg := s.reg
	s.mu.Unlock()
	if reg == nil {
		return
	}

	var levels []types.OutputLevel
	reg.Each(func(v channels.View) bool {
		if v.Kind != channels.PhysicalOutput {
			// Visit order is id order; nothing past the output
			// range can be a physical output.
			return v.ID <= channels.LastOutput
		}
		levels = append(levels, types.OutputLevel{
			ID:      v.ID,
			Value:   v.Value,
			Enabled: v.Flags.Has(channels.FlagEnabled),
			Fault:   v.Flags.Has(channels.FlagFault),
		})
		return true
	})
	if len(levels) > 0 {
		s.conn.Publish(s.conn.NewMessage(topicOutputs, levels, false))
	}
}

func (s *Service) publishSnapshot() {
	s.mu.Lock()
	reg := s.reg
	s.mu.Unlock()
	if reg == nil {
		return
	}

	snap := types.Snapshot{TS: timex.NowMs()}
	snap.Values = make([]types.ChannelValue, 0, reg.Count())
	reg.Each(func(v channels.View) bool {
		snap.Values = append(snap.Values, types.ChannelValue{
			ID:    v.ID,
			Value: v.Value,
			Flags: uint8(v.Flags),
		})
		return true
	})
	s.conn.Publish(s.conn.NewMessage(topicSnapshot, snap, true))
}
