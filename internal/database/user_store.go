package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isandoval/rbac-admin-be/internal/models"
	"github.com/isandoval/rbac-admin-be/internal/services"
)

// UserStore is the SQLite-backed implementation of services.UserStore.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = "id, name, email, password_hash, role, oauth_provider, created_at"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	var hash sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &hash, &user.Role, &user.OAuthProvider, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, services.ErrNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = hash.String
	return user, nil
}

// FindByID retrieves a single user by their ID.
func (s *UserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// FindByEmail retrieves a single user by their email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// Create inserts a new user record.
func (s *UserStore) Create(ctx context.Context, user models.User) error {
	var hash any
	if user.PasswordHash != "" {
		hash = user.PasswordHash
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users(id, name, email, password_hash, role, oauth_provider) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, hash, user.Role, user.OAuthProvider)
	return err
}

// List returns all users, newest first.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountByRole counts users holding the given role.
func (s *UserStore) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", role).Scan(&n)
	return n, err
}

// UpdateRoleGuarded sets the user's role in one conditional write. The
// predicate refuses an admin demotion while the admin count is one, so the
// count check and the update cannot interleave with a concurrent demotion.
func (s *UserStore) UpdateRoleGuarded(ctx context.Context, id, newRole string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET role = ?
		WHERE id = ?
		  AND NOT (role = ? AND ? != ?
		           AND (SELECT COUNT(*) FROM users WHERE role = ?) = 1)`,
		newRole, id, models.RoleAdmin, newRole, models.RoleAdmin, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdatePassword sets a new password hash for the user.
func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update password for %s: %w", id, services.ErrNotFound)
	}
	return nil
}

// Delete removes a user record.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	return err
}
