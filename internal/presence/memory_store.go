package presence

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process. Suitable for a single instance.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]time.Time)}
}

func (s *MemoryStore) Upsert(_ context.Context, sessionID string, seen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.sessions[sessionID]; ok && prev.After(seen) {
		return nil
	}
	s.sessions[sessionID] = seen
	return nil
}

func (s *MemoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, seen := range s.sessions {
		if seen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) CountSince(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, seen := range s.sessions {
		if !seen.Before(since) {
			n++
		}
	}
	return n, nil
}

// LastSeen returns the stored heartbeat time for sessionID.
func (s *MemoryStore) LastSeen(sessionID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen, ok := s.sessions[sessionID]
	return seen, ok
}
