package event

import (
	"sync"

	"go.uber.org/zap"
)

type Listener struct {
	eventType Type
	callback  func(msg interface{})
}

// Manager dispatches events to listeners on the emitting goroutine, in registration order.
type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
}

func NewManager() *Manager {
	return &Manager{listeners: make([]*Listener, 0)}
}

func (m *Manager) AddEventListener(eventType Type, callback func(msg interface{})) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, &Listener{eventType: eventType, callback: callback})
}

func (m *Manager) EmitEvent(eventType Type, msg interface{}) {
	m.mu.RLock()
	matched := make([]*Listener, 0)
	for _, listener := range m.listeners {
		if listener.eventType == eventType {
			matched = append(matched, listener)
		}
	}
	m.mu.RUnlock()

	if len(matched) == 0 {
		zap.L().With(zap.String("type", string(eventType))).Debug("No event listeners available")
		return
	}

	zap.L().With(zap.String("type", string(eventType)), zap.Int("listeners", len(matched))).Debug("EventManager: Emitting event")
	for _, listener := range matched {
		listener.callback(msg)
	}
}
