package session

import (
	"context"
	"sync"
	"time"

	"vegas-casino-service/internal/model"
)

type memoryEntry struct {
	round     model.Round
	expiresAt time.Time
}

// MemoryStore is an in-process Store for tests and single-process
// deployments. Entries expire lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates a MemoryStore. A zero ttl falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Load returns a copy of the stored round, or ErrNotFound.
func (s *MemoryStore) Load(ctx context.Context, username string) (*model.Round, error) {
	s.mu.RLock()
	entry, ok := s.entries[username]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	round := entry.round
	round.PlayerHand = append(model.Hand(nil), entry.round.PlayerHand...)
	round.DealerHand = append(model.Hand(nil), entry.round.DealerHand...)
	return &round, nil
}

// Save stores a copy of the round with a refreshed expiry.
func (s *MemoryStore) Save(ctx context.Context, username string, round *model.Round) error {
	stored := *round
	stored.PlayerHand = append(model.Hand(nil), round.PlayerHand...)
	stored.DealerHand = append(model.Hand(nil), round.DealerHand...)

	s.mu.Lock()
	s.entries[username] = memoryEntry{round: stored, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes the round for a username.
func (s *MemoryStore) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	delete(s.entries, username)
	s.mu.Unlock()
	return nil
}
