package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/isandoval/rbac-admin-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, int, error)
	RegisterUser(ctx context.Context, name, email, password, adminKey string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
	DeleteUser(ctx context.Context, actorID, actorRole, targetUserID string) error
}

const minPasswordLength = 6

// UserService provides business logic for user management.
type UserService struct {
	users    UserStore
	audit    AuditRecorder
	adminKey string // registration key that bootstraps admin accounts
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, audit AuditRecorder, adminKey string) *UserService {
	return &UserService{users: users, audit: audit, adminKey: adminKey}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, unavailable("load user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// ListUsers returns every account plus the current admin count, for the
// admin panel.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, 0, unavailable("list users", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, 0, unavailable("count admins", err)
	}
	return users, admins, nil
}

// RegisterUser creates a new credential account. Supplying the configured
// admin registration key bootstraps the account as an admin; anything else
// yields a regular user.
func (s *UserService) RegisterUser(ctx context.Context, name, email, password, adminKey string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || len(password) < minPasswordLength {
		return models.User{}, ErrInvalidInput
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return models.User{}, unavailable("check email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if s.adminKey != "" && adminKey == s.adminKey {
		role = models.RoleAdmin
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, unavailable("create user", err)
	}

	s.audit.Record(ctx, user.ID, models.ActionCreateUser, user.ID, map[string]string{
		"role": role,
	})

	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials. Login outcomes for known
// accounts are audited either way.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, unavailable("load user", err)
	}

	if user.OAuthOnly() {
		return models.User{}, ErrOAuthOnly
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit.Record(ctx, user.ID, models.ActionLoginFailed, user.ID, nil)
		return models.User{}, ErrInvalidCredentials
	}

	s.audit.Record(ctx, user.ID, models.ActionLoginSuccess, user.ID, nil)

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword verifies the current password, then hashes and sets a new
// one for the user.
func (s *UserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrInvalidInput
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return unavailable("load user", err)
	}
	if user.OAuthOnly() {
		return ErrOAuthOnly
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, string(hashed)); err != nil {
		return unavailable("update password", err)
	}

	s.audit.Record(ctx, id, models.ActionPasswordChanged, id, nil)
	return nil
}

// DeleteUser permanently removes an account. Only admins may delete, and
// never their own account through this path.
func (s *UserService) DeleteUser(ctx context.Context, actorID, actorRole, targetUserID string) error {
	if actorRole != models.RoleAdmin {
		return ErrForbidden
	}
	if actorID == targetUserID {
		return ErrInvalidInput
	}

	target, err := s.users.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return unavailable("load target user", err)
	}

	if err := s.users.Delete(ctx, targetUserID); err != nil {
		return unavailable("delete user", err)
	}

	s.audit.Record(ctx, actorID, models.ActionDeleteUser, targetUserID, map[string]string{
		"email": target.Email,
		"role":  target.Role,
	})
	return nil
}
