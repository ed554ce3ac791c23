//go:build !rp2040 && !rp2350

// Package diag serves the host-side diagnostic surface: Prometheus
// metrics plus JSON dumps of the channel table and engine counters.
// Firmware targets build without it.
package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdmcode-go/bus"
	"pdmcode-go/types"
)

var (
	topicEngineSnapshot = bus.T("engine", "snapshot")
	topicEngineDiag     = bus.T("engine", "diag")
)

type Service struct {
	conn *bus.Connection
	addr string

	mu       sync.RWMutex
	lastSnap types.Snapshot
	lastDiag types.EngineDiag

	reg        *prometheus.Registry
	passes     prometheus.Gauge
	skipped    prometheus.Gauge
	unknownOp  prometheus.Gauge
	badChannel prometheus.Gauge
	badSpec    prometheus.Gauge
	frozen     prometheus.Gauge
	channels   prometheus.Gauge
}

func NewService(conn *bus.Connection, addr string) *Service {
	s := &Service{conn: conn, addr: addr, reg: prometheus.NewRegistry()}

	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pdm",
			Subsystem: "engine",
			Name:      name,
			Help:      help,
		})
		s.reg.MustRegister(g)
		return g
	}
	s.passes = gauge("passes_total", "Executor passes completed.")
	s.skipped = gauge("skipped_total", "Disabled functions skipped.")
	s.unknownOp = gauge("unknown_op_total", "Functions with an unrecognised op.")
	s.badChannel = gauge("bad_channel_total", "Functions referencing unusable channels.")
	s.badSpec = gauge("bad_spec_total", "Functions with unusable specs.")
	s.frozen = gauge("frozen", "1 while the executor is frozen on corrupt state.")
	s.channels = gauge("channels", "Registered channel count.")
	return s
}

func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)

	srv := &http.Server{Addr: s.addr, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()
	go func() { _ = srv.ListenAndServe() }()
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	snapSub := s.conn.Subscribe(topicEngineSnapshot)
	defer s.conn.Unsubscribe(snapSub)
	diagSub := s.conn.Subscribe(topicEngineDiag)
	defer s.conn.Unsubscribe(diagSub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-snapSub.Channel():
			if snap, ok := msg.Payload.(types.Snapshot); ok {
				s.setSnapshot(snap)
			}
		case msg := <-diagSub.Channel():
			if d, ok := msg.Payload.(types.EngineDiag); ok {
				s.setDiag(d)
			}
		}
	}
}

func (s *Service) setSnapshot(snap types.Snapshot) {
	s.mu.Lock()
	s.lastSnap = snap
	s.mu.Unlock()
}

func (s *Service) setDiag(d types.EngineDiag) {
	s.mu.Lock()
	s.lastDiag = d
	s.mu.Unlock()

	s.passes.Set(float64(d.Passes))
	s.skipped.Set(float64(d.Skipped))
	s.unknownOp.Set(float64(d.UnknownOp))
	s.badChannel.Set(float64(d.BadChannel))
	s.badSpec.Set(float64(d.BadSpec))
	s.channels.Set(float64(d.Channels))
	if d.Frozen {
		s.frozen.Set(1)
	} else {
		s.frozen.Set(0)
	}
}

// Router builds the HTTP surface. Exposed for tests.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/channels", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		snap := s.lastSnap
		s.mu.RUnlock()
		writeJSON(w, snap)
	})
	r.Get("/diag", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		d := s.lastDiag
		s.mu.RUnlock()
		writeJSON(w, d)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
