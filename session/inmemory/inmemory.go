package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theplow-kwak/mcp-confluence/models"
)

type entry struct {
	history   []models.Message
	expiresAt time.Time
}

// Store is an in-memory conversation store. Histories do not survive a
// process restart; expired entries are dropped lazily on access.
type Store struct {
	sessions map[string]*entry
	mu       sync.RWMutex
}

func NewSessionStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

func (s *Store) Ensure(_ context.Context, id string, ttl time.Duration) (string, []models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if e, ok := s.sessions[id]; ok && time.Now().Before(e.expiresAt) {
			e.expiresAt = time.Now().Add(ttl)
			return id, cloneHistory(e.history), nil
		}
	}

	newID := uuid.NewString()
	s.sessions[newID] = &entry{expiresAt: time.Now().Add(ttl)}
	return newID, nil, nil
}

func (s *Store) Get(_ context.Context, id string) ([]models.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return cloneHistory(e.history), true, nil
}

func (s *Store) Put(_ context.Context, id string, history []models.Message, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{history: cloneHistory(history), expiresAt: time.Now().Add(ttl)}
	return nil
}

// cloneHistory keeps callers from mutating stored state through the
// returned slice.
func cloneHistory(in []models.Message) []models.Message {
	if in == nil {
		return nil
	}
	out := make([]models.Message, len(in))
	copy(out, in)
	return out
}
