// Package telemetry uplinks engine surfaces to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"pdmcode-go/bus"
	"pdmcode-go/types"
)

// Broker topic layout. The session id separates runs of the same
// controller so a consumer can tell a reboot from a gap.
const (
	TopicSnapshot = "pdm/snapshot"
	TopicDiag     = "pdm/diag"
	TopicState    = "pdm/state"
)

// Publisher is the uplink abstraction: the real one wraps paho, the
// fake one records for tests.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
	Close() error
}

// ConnectionStatus reports whether the uplink is currently usable.
type ConnectionStatus interface {
	IsConnected() bool
}

// Envelope wraps every uplinked payload with run identity.
type Envelope struct {
	Session string          `json:"session"`
	Kind    string          `json:"kind"`
	Body    json.RawMessage `json:"body"`
}

var (
	topicEngineSnapshot = bus.T("engine", "snapshot")
	topicEngineDiag     = bus.T("engine", "diag")
	topicEngineState    = bus.T("engine", "state")
)

// Service bridges the internal bus to the broker.
type Service struct {
	conn    *bus.Connection
	pub     Publisher
	session string
}

func NewService(conn *bus.Connection, pub Publisher) *Service {
	return &Service{
		conn:    conn,
		pub:     pub,
		session: uuid.NewString(),
	}
}

// Session returns the run identity stamped on every envelope.
func (s *Service) Session() string { return s.session }

func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	snapSub := s.conn.Subscribe(topicEngineSnapshot)
	defer s.conn.Unsubscribe(snapSub)
	diagSub := s.conn.Subscribe(topicEngineDiag)
	defer s.conn.Unsubscribe(diagSub)
	stateSub := s.conn.Subscribe(topicEngineState)
	defer s.conn.Unsubscribe(stateSub)

	for {
		select {
		case <-ctx.Done():
			_ = s.pub.Close()
			return
		case msg := <-snapSub.Channel():
			if snap, ok := msg.Payload.(types.Snapshot); ok {
				s.uplink(TopicSnapshot, "snapshot", snap, true)
			}
		case msg := <-diagSub.Channel():
			if diag, ok := msg.Payload.(types.EngineDiag); ok {
				s.uplink(TopicDiag, "diag", diag, true)
			}
		case msg := <-stateSub.Channel():
			if st, ok := msg.Payload.(types.EngineState); ok {
				s.uplink(TopicState, "state", st, true)
			}
		}
	}
}

func (s *Service) uplink(topic, kind string, body any, retained bool) {
	payload, err := s.envelope(kind, body)
	if err != nil {
		return
	}
	// Publish failures are the publisher's problem (buffering,
	// reconnect); the bridge never blocks the bus on the broker.
	_ = s.pub.Publish(topic, payload, retained)
}

func (s *Service) envelope(kind string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Session: s.session, Kind: kind, Body: raw})
}
