package telemetry

import (
	"encoding/json"
	"testing"

	"pdmcode-go/types"
)

func TestEnvelopeCarriesSessionAndKind(t *testing.T) {
	b := newTestBus(t)
	fake := NewFakePublisher()
	svc := NewService(b, fake)

	if svc.Session() == "" {
		t.Fatal("empty session id")
	}

	svc.uplink(TopicDiag, "diag", types.EngineDiag{Passes: 7}, true)

	if len(fake.Payloads) != 1 {
		t.Fatalf("published %d messages, want 1", len(fake.Payloads))
	}
	var env Envelope
	if err := json.Unmarshal(fake.Payloads[0], &env); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if env.Session != svc.Session() {
		t.Fatalf("session = %q, want %q", env.Session, svc.Session())
	}
	if env.Kind != "diag" {
		t.Fatalf("kind = %q", env.Kind)
	}
	var diag types.EngineDiag
	if err := json.Unmarshal(env.Body, &diag); err != nil {
		t.Fatal(err)
	}
	if diag.Passes != 7 {
		t.Fatalf("body passes = %d, want 7", diag.Passes)
	}
	if fake.Topics[0] != TopicDiag || !fake.Retained[0] {
		t.Fatalf("topic/retained = %q/%v", fake.Topics[0], fake.Retained[0])
	}
}

func TestUplinkSwallowsPublishErrors(t *testing.T) {
	b := newTestBus(t)
	fake := NewFakePublisher()
	fake.PublishError = errTest
	svc := NewService(b, fake)

	// Must not panic or block; the publisher owns retry policy.
	svc.uplink(TopicState, "state", types.EngineState{Level: "running"}, true)
}
