package services

import (
	"context"
	"sync"
	"time"

	"github.com/isandoval/rbac-admin-be/internal/models"
)

// memUserStore is an in-memory UserStore for service tests. Setting failWith
// makes every call return that error, simulating an unreachable database.
type memUserStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	failWith error
}

func newMemUserStore(users ...models.User) *memUserStore {
	s := &memUserStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *memUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *memUserStore) CountByRole(_ context.Context, role string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	n := 0
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *memUserStore) UpdateRoleGuarded(_ context.Context, id, newRole string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	if u.Role == models.RoleAdmin && newRole != models.RoleAdmin {
		admins := 0
		for _, other := range s.users {
			if other.Role == models.RoleAdmin {
				admins++
			}
		}
		if admins == 1 {
			return false, nil
		}
	}
	u.Role = newRole
	s.users[id] = u
	return true, nil
}

func (s *memUserStore) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) get(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// memTokenStore is an in-memory TokenStore for service tests.
type memTokenStore struct {
	mu       sync.Mutex
	tokens   map[string]models.PasswordResetToken
	failWith error
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]models.PasswordResetToken)}
}

func (s *memTokenStore) Put(_ context.Context, token models.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.tokens[token.Token] = token
	return nil
}

func (s *memTokenStore) Consume(_ context.Context, token string) (models.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.PasswordResetToken{}, s.failWith
	}
	tok, ok := s.tokens[token]
	if !ok {
		return models.PasswordResetToken{}, ErrNotFound
	}
	delete(s.tokens, token)
	return tok, nil
}

func (s *memTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	var n int64
	for key, tok := range s.tokens {
		if tok.Expired(now) {
			delete(s.tokens, key)
			n++
		}
	}
	return n, nil
}

func (s *memTokenStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// recordedAudit captures one AuditRecorder call.
type recordedAudit struct {
	ActorID  string
	Action   string
	TargetID string
	Details  map[string]string
}

// recorderSpy collects audit calls for assertions.
type recorderSpy struct {
	mu      sync.Mutex
	entries []recordedAudit
}

func (r *recorderSpy) Record(_ context.Context, actorID, action, targetID string, details map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedAudit{ActorID: actorID, Action: action, TargetID: targetID, Details: details})
}

func (r *recorderSpy) all() []recordedAudit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedAudit(nil), r.entries...)
}
