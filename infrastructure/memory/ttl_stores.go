package memory

import (
	"context"
	"sync"
	"time"

	"task-api/domain/ports"
)

// expiringSet is a set of keys each with a deadline. Expired keys are invisible
// to lookups and dropped by Sweep.
type expiringSet struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func newExpiringSet() *expiringSet {
	return &expiringSet{items: make(map[string]time.Time), now: time.Now}
}

func (s *expiringSet) put(key string, deadline time.Time) {
	s.mu.Lock()
	s.items[key] = deadline
	s.mu.Unlock()
}

func (s *expiringSet) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.items[key]
	return ok && s.now().Before(deadline)
}

func (s *expiringSet) take(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.items[key]
	delete(s.items, key)
	return ok && s.now().Before(deadline)
}

// Sweep drops expired keys and returns how many were removed.
func (s *expiringSet) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, deadline := range s.items {
		if !now.Before(deadline) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// Sweeper is implemented by stores that need periodic cleanup.
type Sweeper interface {
	Sweep() int
}

type OAuthStateStore struct {
	*expiringSet
}

func NewOAuthStateStore() *OAuthStateStore {
	return &OAuthStateStore{expiringSet: newExpiringSet()}
}

var _ ports.OAuthStateStore = (*OAuthStateStore)(nil)

func (s *OAuthStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	s.put(state, s.now().Add(ttl))
	return nil
}

func (s *OAuthStateStore) Consume(ctx context.Context, state string) (bool, error) {
	return s.take(state), nil
}

type TokenRevocationStore struct {
	*expiringSet
}

func NewTokenRevocationStore() *TokenRevocationStore {
	return &TokenRevocationStore{expiringSet: newExpiringSet()}
}

var _ ports.TokenRevocationStore = (*TokenRevocationStore)(nil)

func (s *TokenRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	s.put(jti, expiresAt)
	return nil
}

func (s *TokenRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.has(jti), nil
}
