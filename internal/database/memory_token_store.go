package database

import (
	"context"
	"sync"
	"time"

	"github.com/isandoval/rbac-admin-be/internal/models"
	"github.com/isandoval/rbac-admin-be/internal/services"
)

// MemoryTokenStore is the in-process fallback for reset tokens, used outside
// production when the durable store is unreachable. It honors the same TTL
// and single-use contract but does not survive a restart.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]models.PasswordResetToken
}

// NewMemoryTokenStore creates an empty MemoryTokenStore.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]models.PasswordResetToken)}
}

// Put implements services.TokenStore.
func (s *MemoryTokenStore) Put(_ context.Context, token models.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
	return nil
}

// Consume implements services.TokenStore. Lookup and removal happen under
// one lock acquisition, preserving at-most-once redemption.
func (s *MemoryTokenStore) Consume(_ context.Context, token string) (models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[token]
	if !ok {
		return models.PasswordResetToken{}, services.ErrNotFound
	}
	delete(s.tokens, token)
	return tok, nil
}

// DeleteExpired implements services.TokenStore.
func (s *MemoryTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, tok := range s.tokens {
		if tok.Expired(now) {
			delete(s.tokens, key)
			n++
		}
	}
	return n, nil
}
