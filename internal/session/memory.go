package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback history store. It mirrors the
// redis store's semantics: append-only per-user logs with a sliding
// expiry enforced lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	logs    map[string][]Entry
	expires map[string]time.Time

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs:    make(map[string][]Entry),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Append adds an entry and refreshes the user's expiry.
func (s *MemoryStore) Append(_ context.Context, userID, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(userID)
	s.logs[userID] = append(s.logs[userID], Entry{Role: role, Text: text})
	s.expires[userID] = s.now().Add(TTL)
	return nil
}

// History returns a copy of the user's ordered log.
func (s *MemoryStore) History(_ context.Context, userID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(userID)
	log := s.logs[userID]
	out := make([]Entry, len(log))
	copy(out, log)
	return out, nil
}

// Clear deletes the user's log.
func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.logs, userID)
	delete(s.expires, userID)
	return nil
}

// evictLocked drops the user's log if its expiry has passed.
// Caller must hold mu.
func (s *MemoryStore) evictLocked(userID string) {
	if exp, ok := s.expires[userID]; ok && s.now().After(exp) {
		delete(s.logs, userID)
		delete(s.expires, userID)
	}
}
