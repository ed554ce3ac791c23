// Package wire frames engine snapshots for the on-board companion
// link. The companion MCU only needs the raw channel table, so the
// codec is a fixed binary layout rather than JSON.
package wire

import (
	"context"
	"io"

	"pdmcode-go/bus"
	"pdmcode-go/types"
)

var topicEngineSnapshot = bus.T("engine", "snapshot")

// Service encodes each published snapshot into one frame and writes it
// to the port. Snapshots arriving faster than MinIntervalMS are
// dropped; the link carries state, not history.
type Service struct {
	conn *bus.Connection
	port io.Writer

	MinIntervalMS int64

	lastTS  int64
	scratch []byte
}

func NewService(conn *bus.Connection, port io.Writer) *Service {
	return &Service{conn: conn, port: port, MinIntervalMS: 100}
}

func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	sub := s.conn.Subscribe(topicEngineSnapshot)
	defer s.conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			if snap, ok := msg.Payload.(types.Snapshot); ok {
				s.send(snap)
			}
		}
	}
}

func (s *Service) send(snap types.Snapshot) {
	if s.lastTS != 0 && snap.TS-s.lastTS < s.MinIntervalMS {
		return
	}
	s.lastTS = snap.TS

	s.scratch = appendSnapshot(s.scratch[:0], snap)
	frame, err := AppendFrame(nil, FrameSnapshot, s.scratch)
	if err != nil {
		return
	}
	// Port write failures drop the frame; the next snapshot
	// supersedes it anyway.
	_, _ = s.port.Write(frame)
}
