package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps tokens in process memory. Expired tokens are evicted
// lazily on the next Exists check; there is no background sweep.
type MemoryStore struct {
	mu     sync.Mutex
	expiry map[string]time.Time
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expiry: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiry[token] = expiresAt
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.expiry[token]
	if !ok {
		return false, nil
	}
	if s.now().After(expiresAt) {
		delete(s.expiry, token)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expiry, token)
	return nil
}
