package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/isandoval/rbac-admin-be/internal/models"
)

type mailerSpy struct {
	mu    sync.Mutex
	to    []string
	links []string
	err   error
}

func (m *mailerSpy) SendResetLink(to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.links = append(m.links, link)
	return nil
}

func (m *mailerSpy) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links)
	link := m.links[len(m.links)-1]
	idx := strings.LastIndex(link, "/")
	require.Greater(t, idx, -1)
	return link[idx+1:]
}

func newResetFixture(users ...models.User) (*ResetService, *memUserStore, *memTokenStore, *memTokenStore, *mailerSpy, *recorderSpy) {
	userStore := newMemUserStore(users...)
	tokens := newMemTokenStore()
	fallback := newMemTokenStore()
	mailer := &mailerSpy{}
	audit := &recorderSpy{}
	svc := NewResetService(userStore, tokens, fallback, audit, mailer, "http://localhost:3000")
	return svc, userStore, tokens, fallback, mailer, audit
}

func TestRequestResetIssuesTokenAndMailsLink(t *testing.T) {
	user := models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleUser, PasswordHash: "x"}
	svc, _, tokens, _, mailer, _ := newResetFixture(user)

	require.NoError(t, svc.RequestReset(context.Background(), "u1@example.com"))

	assert.Equal(t, 1, tokens.len())
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "u1@example.com", mailer.to[0])
	assert.Contains(t, mailer.links[0], "http://localhost:3000/reset/")
}

func TestRequestResetUnknownEmailSucceedsSilently(t *testing.T) {
	svc, _, tokens, _, mailer, _ := newResetFixture()

	require.NoError(t, svc.RequestReset(context.Background(), "nobody@example.com"))

	assert.Zero(t, tokens.len())
	assert.Empty(t, mailer.to)
}

func TestRequestResetMailFailureIsIndistinguishable(t *testing.T) {
	user := models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleUser, PasswordHash: "x"}
	svc, _, tokens, _, mailer, _ := newResetFixture(user)
	mailer.err = errors.New("smtp timeout")

	// Same response as for an unknown address, so delivery trouble cannot be
	// used to probe which emails exist. The token stays redeemable.
	require.NoError(t, svc.RequestReset(context.Background(), "u1@example.com"))
	assert.Equal(t, 1, tokens.len())
}

func TestConsumeResetUpdatesPasswordOnce(t *testing.T) {
	user := models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleUser, PasswordHash: "old"}
	svc, userStore, _, _, mailer, audit := newResetFixture(user)

	require.NoError(t, svc.RequestReset(context.Background(), "u1@example.com"))
	token := mailer.lastToken(t)

	require.NoError(t, svc.ConsumeReset(context.Background(), token, "brand-new-pass"))

	updated, _ := userStore.get("u1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brand-new-pass")))

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionResetPassword, entries[0].Action)
	assert.Equal(t, "u1", entries[0].ActorID)
	assert.Equal(t, "u1", entries[0].TargetID)

	// Replay must be rejected and leave the password alone.
	err := svc.ConsumeReset(context.Background(), token, "other-pass")
	assert.ErrorIs(t, err, ErrTokenConsumed)
	after, _ := userStore.get("u1")
	assert.Equal(t, updated.PasswordHash, after.PasswordHash)
}

func TestConsumeResetExpiredRejectedLikeUnknown(t *testing.T) {
	user := models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleUser, PasswordHash: "old"}
	svc, userStore, _, _, mailer, audit := newResetFixture(user)

	require.NoError(t, svc.RequestReset(context.Background(), "u1@example.com"))
	token := mailer.lastToken(t)

	// Move the clock past the TTL.
	svc.now = func() time.Time { return time.Now().Add(models.ResetTokenTTL + time.Minute) }

	expiredErr := svc.ConsumeReset(context.Background(), token, "brand-new-pass")
	assert.ErrorIs(t, expiredErr, ErrTokenConsumed)

	// An expired token and one that never existed are indistinguishable.
	unknownErr := svc.ConsumeReset(context.Background(), "deadbeef", "brand-new-pass")
	assert.Equal(t, unknownErr, expiredErr)

	unchanged, _ := userStore.get("u1")
	assert.Equal(t, "old", unchanged.PasswordHash)
	assert.Empty(t, audit.all())
}

func TestConsumeResetRejectsUnknownToken(t *testing.T) {
	svc, _, _, _, _, _ := newResetFixture()

	err := svc.ConsumeReset(context.Background(), "deadbeef", "brand-new-pass")
	assert.ErrorIs(t, err, ErrTokenConsumed)
}

func TestConsumeResetRejectsShortPassword(t *testing.T) {
	svc, _, _, _, _, _ := newResetFixture()

	err := svc.ConsumeReset(context.Background(), "deadbeef", "tiny")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRequestResetFallsBackWhenDurableStoreDown(t *testing.T) {
	user := models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleUser, PasswordHash: "old"}
	svc, userStore, tokens, fallback, mailer, _ := newResetFixture(user)
	tokens.failWith = errors.New("disk I/O error")

	require.NoError(t, svc.RequestReset(context.Background(), "u1@example.com"))
	assert.Equal(t, 1, fallback.len())

	// The fallback honors the same single-use contract.
	token := mailer.lastToken(t)
	require.NoError(t, svc.ConsumeReset(context.Background(), token, "brand-new-pass"))

	updated, _ := userStore.get("u1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brand-new-pass")))

	err := svc.ConsumeReset(context.Background(), token, "other-pass")
	assert.ErrorIs(t, err, ErrTokenConsumed)
}

func TestRequestResetWithoutFallbackReportsUnavailable(t *testing.T) {
	user := models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleUser, PasswordHash: "old"}
	userStore := newMemUserStore(user)
	tokens := newMemTokenStore()
	tokens.failWith = errors.New("disk I/O error")
	svc := NewResetService(userStore, tokens, nil, &recorderSpy{}, &mailerSpy{}, "http://localhost:3000")

	err := svc.RequestReset(context.Background(), "u1@example.com")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSweepExpiredClearsBothStores(t *testing.T) {
	svc, _, tokens, fallback, _, _ := newResetFixture()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	require.NoError(t, tokens.Put(context.Background(), models.PasswordResetToken{Token: "stale", UserID: "u1", ExpiresAt: past}))
	require.NoError(t, tokens.Put(context.Background(), models.PasswordResetToken{Token: "fresh", UserID: "u1", ExpiresAt: future}))
	require.NoError(t, fallback.Put(context.Background(), models.PasswordResetToken{Token: "stale2", UserID: "u1", ExpiresAt: past}))

	svc.SweepExpired(context.Background())

	assert.Equal(t, 1, tokens.len())
	assert.Zero(t, fallback.len())
}
