// services/heartbeat/service.go
package heartbeat

import (
	"context"
	"time"

	"pdmcode-go/bus"
	"pdmcode-go/types"
	"pdmcode-go/x/timex"
)

var (
	topicHeartbeat  = bus.T("system", "heartbeat")
	topicEngineDiag = bus.T("engine", "diag")
)

// Beat is the retained liveness record. UptimeMS counts from service
// start; Diag is the last engine diagnostic seen, so a consumer gets
// liveness and engine health in one subscription.
type Beat struct {
	UptimeMS int64            `json:"uptime_ms"`
	TS       int64            `json:"ts_ms"`
	Diag     types.EngineDiag `json:"diag"`
}

type Service struct {
	conn     *bus.Connection
	Interval time.Duration
}

func NewService(conn *bus.Connection) *Service {
	return &Service{conn: conn, Interval: time.Second}
}

func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	diagSub := s.conn.Subscribe(topicEngineDiag)
	defer s.conn.Unsubscribe(diagSub)

	start := timex.NowMs()
	var lastDiag types.EngineDiag

	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-diagSub.Channel():
			if d, ok := msg.Payload.(types.EngineDiag); ok {
				lastDiag = d
			}
		case <-tick.C:
			now := timex.NowMs()
			s.conn.Publish(s.conn.NewMessage(topicHeartbeat, Beat{
				UptimeMS: now - start,
				TS:       now,
				Diag:     lastDiag,
			}, true))
		}
	}
}
