//go:build !rp2040 && !rp2350

// services/diag/diag_test.go
package diag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdmcode-go/bus"
	"pdmcode-go/types"
)

func newDiagService(t *testing.T) *Service {
	t.Helper()
	b := bus.NewBus(16)
	return NewService(b.NewConnection("diag"), "127.0.0.1:0")
}

func TestHealthz(t *testing.T) {
	s := newDiagService(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChannelsServesLastSnapshot(t *testing.T) {
	s := newDiagService(t)
	s.setSnapshot(types.Snapshot{
		TS:     42,
		Values: []types.ChannelValue{{ID: 100, Value: 1000, Flags: 1}},
	})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/channels", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.TS != 42 || len(snap.Values) != 1 || snap.Values[0].ID != 100 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDiagServesCounters(t *testing.T) {
	s := newDiagService(t)
	s.setDiag(types.EngineDiag{Passes: 9, BadChannel: 2, Frozen: true})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diag", nil))
	var d types.EngineDiag
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.Passes != 9 || d.BadChannel != 2 || !d.Frozen {
		t.Fatalf("diag = %+v", d)
	}
}

func TestMetricsExported(t *testing.T) {
	s := newDiagService(t)
	s.setDiag(types.EngineDiag{Passes: 123, Channels: 7})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "pdm_engine_passes_total 123") {
		t.Fatalf("passes metric missing:\n%s", body)
	}
	if !strings.Contains(body, "pdm_engine_channels 7") {
		t.Fatalf("channels metric missing:\n%s", body)
	}
	if !strings.Contains(body, "pdm_engine_frozen 0") {
		t.Fatalf("frozen metric missing:\n%s", body)
	}
}
