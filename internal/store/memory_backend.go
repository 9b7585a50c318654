package store

import (
	"sync"

	"github.com/logimind/advisor/internal/domain"
)

// MemoryBackend keeps session records in a map. Used by tests and by the
// "memory" store configuration.
type MemoryBackend struct {
	mu    sync.RWMutex
	convs map[string]*domain.Conversation
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{convs: make(map[string]*domain.Conversation)}
}

func (m *MemoryBackend) Load(sessionID string) (*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.convs[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *conv
	cp.Messages = append([]domain.Message(nil), conv.Messages...)
	if conv.Context != nil {
		cp.Context = make(map[string]any, len(conv.Context))
		for k, v := range conv.Context {
			cp.Context[k] = v
		}
	}
	return &cp, nil
}

func (m *MemoryBackend) Save(conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *conv
	cp.Messages = append([]domain.Message(nil), conv.Messages...)
	m.convs[conv.SessionID] = &cp
	return nil
}

func (m *MemoryBackend) Delete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, sessionID)
	return nil
}
