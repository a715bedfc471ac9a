package store

import (
	"context"
	"time"

	"github.com/tambiyash/image-lizard/internal/cache"
	"github.com/tambiyash/image-lizard/internal/checkout/domain"
)

type memoryStore struct {
	sessions cache.Cache[string, domain.Session]
}

// NewMemoryStore keeps sessions in process memory. Redis-less development
// and tests only; sessions do not survive restarts.
func NewMemoryStore() domain.SessionStore {
	return &memoryStore{sessions: cache.NewTTLCache[string, domain.Session]()}
}

func (s *memoryStore) Put(ctx context.Context, session domain.Session, ttl time.Duration) error {
	s.sessions.Set(session.ID, session, ttl)
	return nil
}

func (s *memoryStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *memoryStore) Delete(ctx context.Context, sessionID string) error {
	s.sessions.Delete(sessionID)
	return nil
}

// Sweep drops sessions whose TTL elapsed before now. The redis-backed store
// has no equivalent; redis expires keys itself.
func (s *memoryStore) Sweep(now time.Time) int {
	return s.sessions.Sweep(now)
}
