// Package store persists per-session conversation logs behind a
// write-through in-memory cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/logimind/advisor/internal/domain"
	"github.com/logimind/advisor/internal/llm"
	"github.com/logimind/advisor/internal/logging"
)

// ErrNotFound is returned by backends when a session has no record.
var ErrNotFound = errors.New("conversation not found")

// Backend is a durable store holding one record per session.
type Backend interface {
	// Load returns the conversation for a session, or ErrNotFound.
	Load(sessionID string) (*domain.Conversation, error)

	// Save persists the full conversation record.
	Save(conv *domain.Conversation) error

	// Delete removes the session record. Absent sessions are a no-op.
	Delete(sessionID string) error
}

// Store is the conversation store: an in-memory cache in front of a
// durable backend. Appends go to the backend first, then the cache.
type Store struct {
	backend Backend
	log     *logging.Logger

	mu    sync.Mutex
	cache map[string]*domain.Conversation
	locks map[string]*sync.Mutex
}

// New creates a Store over the given backend.
func New(backend Backend, log *logging.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log.Sub("store"),
		cache:   make(map[string]*domain.Conversation),
		locks:   make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing writers for one session.
func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[sessionID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[sessionID] = l
	return l
}

// load returns the cached conversation, falling back to the backend.
// Returns nil when the session is unknown or the read failed.
func (s *Store) load(sessionID string) *domain.Conversation {
	s.mu.Lock()
	if conv, ok := s.cache[sessionID]; ok {
		s.mu.Unlock()
		return conv
	}
	s.mu.Unlock()

	conv, err := s.backend.Load(sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str("session", sessionID).Msg("conversation read failed")
		}
		return nil
	}

	s.mu.Lock()
	s.cache[sessionID] = conv
	s.mu.Unlock()
	return conv
}

// GetHistory returns the last limit messages in chronological order.
// Unknown sessions and read failures yield an empty history. A negative
// limit means unlimited; limit zero yields an empty list.
func (s *Store) GetHistory(ctx context.Context, sessionID string, limit int) []llm.Message {
	if limit == 0 {
		return []llm.Message{}
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	conv := s.load(sessionID)
	if conv == nil {
		return []llm.Message{}
	}

	msgs := conv.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// Append adds a message to the session, creating the conversation on first
// use. The durable write happens before the cache update; write errors are
// surfaced to the caller.
func (s *Store) Append(ctx context.Context, sessionID, role, content string, metadata map[string]any) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()

	conv := s.load(sessionID)
	if conv == nil {
		conv = &domain.Conversation{
			SessionID: sessionID,
			CreatedAt: now,
		}
	}

	conv.Messages = append(conv.Messages, domain.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		Metadata:  metadata,
	})
	conv.UpdatedAt = now

	if err := s.backend.Save(conv); err != nil {
		// Roll the in-memory copy back so cache and backend stay coherent.
		conv.Messages = conv.Messages[:len(conv.Messages)-1]
		return fmt.Errorf("saving conversation %s: %w", sessionID, err)
	}

	s.mu.Lock()
	s.cache[sessionID] = conv
	s.mu.Unlock()
	return nil
}

// GetContext returns the stored free-form context map, or an empty map.
func (s *Store) GetContext(sessionID string) map[string]any {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	conv := s.load(sessionID)
	if conv == nil || conv.Context == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(conv.Context))
	for k, v := range conv.Context {
		out[k] = v
	}
	return out
}

// UpdateContext shallow-merges patch into the stored context map; later
// writes win.
func (s *Store) UpdateContext(sessionID string, patch map[string]any) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()

	conv := s.load(sessionID)
	if conv == nil {
		conv = &domain.Conversation{SessionID: sessionID, CreatedAt: now, UpdatedAt: now}
	}
	if conv.Context == nil {
		conv.Context = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		conv.Context[k] = v
	}

	if err := s.backend.Save(conv); err != nil {
		return fmt.Errorf("saving conversation %s: %w", sessionID, err)
	}

	s.mu.Lock()
	s.cache[sessionID] = conv
	s.mu.Unlock()
	return nil
}

// Clear removes all state for the session.
func (s *Store) Clear(sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.backend.Delete(sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clearing conversation %s: %w", sessionID, err)
	}

	s.mu.Lock()
	delete(s.cache, sessionID)
	s.mu.Unlock()
	return nil
}

// topicKeywords maps lowercase keywords to topic labels, both languages.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"risk assessment", []string{"risk", "rủi ro", "đánh giá"}},
	{"reports", []string{"export", "pdf", "xuất", "báo cáo"}},
	{"recommendations", []string{"recommend", "đề xuất", "khuyến nghị", "biện pháp"}},
	{"scenarios", []string{"scenario", "what-if", "kịch bản"}},
	{"comparisons", []string{"compare", "so sánh"}},
}

// Summarize returns a short textual summary of the conversation when it
// has grown past threshold messages, else the empty string. Topic
// detection is keyword-based over the last ten messages.
func (s *Store) Summarize(sessionID string, threshold int) string {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	conv := s.load(sessionID)
	if conv == nil || len(conv.Messages) <= threshold {
		return ""
	}

	recent := conv.Messages
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	seen := map[string]bool{}
	var topics []string
	for _, m := range recent {
		text := strings.ToLower(m.Content)
		for _, tk := range topicKeywords {
			if seen[tk.topic] {
				continue
			}
			for _, kw := range tk.keywords {
				if strings.Contains(text, kw) {
					seen[tk.topic] = true
					topics = append(topics, tk.topic)
					break
				}
			}
		}
	}
	sort.Strings(topics)

	summary := fmt.Sprintf("Conversation with %d messages.", len(conv.Messages))
	if len(topics) > 0 {
		summary += " Recent topics: " + strings.Join(topics, ", ") + "."
	}
	return summary
}

// SanitizeSessionID makes a session id safe for filesystem use by
// replacing path separators.
func SanitizeSessionID(sessionID string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return r.Replace(sessionID)
}
