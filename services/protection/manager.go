// services/protection/manager.go
package protection

import (
	"context"
	"sync"

	"pdmcode-go/bus"
	"pdmcode-go/channels"
	"pdmcode-go/services/config"
	"pdmcode-go/types"
)

var topicConfigEngine = bus.T("config", "engine")

// Manager is the engine-facing guard whose rule set follows the active
// configuration. The engine calls Apply from its tick path; the
// manager's loop swaps the shedder when a new configuration lands.
type Manager struct {
	mu      sync.Mutex
	shedder *Shedder
}

func NewManager() *Manager { return &Manager{} }

func (m *Manager) Apply(reg *channels.Registry, deltaMS int32) {
	m.mu.Lock()
	sh := m.shedder
	m.mu.Unlock()
	if sh != nil {
		sh.Apply(reg, deltaMS)
	}
}

// SetRules replaces the active rule set, discarding shed state.
func (m *Manager) SetRules(rules []types.ShedRule) {
	m.mu.Lock()
	m.shedder = NewShedder(rules)
	m.mu.Unlock()
}

// Start follows configuration updates.
func (m *Manager) Start(ctx context.Context, conn *bus.Connection) error {
	go func() {
		sub := conn.Subscribe(topicConfigEngine)
		defer conn.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sub.Channel():
				if loaded, ok := msg.Payload.(*config.Loaded); ok {
					m.SetRules(loaded.Shedding)
				}
			}
		}
	}()
	return nil
}
