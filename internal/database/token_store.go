package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/isandoval/rbac-admin-be/internal/models"
	"github.com/isandoval/rbac-admin-be/internal/services"
)

// TokenStore is the SQLite-backed implementation of services.TokenStore.
type TokenStore struct {
	db *sql.DB
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Put stores a freshly issued token.
func (s *TokenStore) Put(ctx context.Context, token models.PasswordResetToken) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO password_resets(token, user_id, expires_at) VALUES(?, ?, ?)",
		token.Token, token.UserID, token.ExpiresAt)
	return err
}

// Consume deletes the token row and returns it. DELETE ... RETURNING makes
// removal and lookup one statement, so only one caller can ever redeem a
// given token.
func (s *TokenStore) Consume(ctx context.Context, token string) (models.PasswordResetToken, error) {
	row := s.db.QueryRowContext(ctx,
		"DELETE FROM password_resets WHERE token = ? RETURNING token, user_id, expires_at", token)

	var tok models.PasswordResetToken
	if err := row.Scan(&tok.Token, &tok.UserID, &tok.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PasswordResetToken{}, services.ErrNotFound
		}
		return models.PasswordResetToken{}, err
	}
	return tok, nil
}

// DeleteExpired removes tokens past their TTL.
func (s *TokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM password_resets WHERE expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
