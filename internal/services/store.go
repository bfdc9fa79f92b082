package services

import (
	"context"
	"time"

	"github.com/isandoval/rbac-admin-be/internal/models"
)

// UserStore is the persistence contract for user records. Implementations
// return ErrNotFound for missing records and raw driver errors for
// connectivity failures.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	List(ctx context.Context) ([]models.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
	// UpdateRoleGuarded applies the role change as a single conditional
	// write: the change is refused (applied=false, no write) when it would
	// leave the system without any admin.
	UpdateRoleGuarded(ctx context.Context, id, newRole string) (applied bool, err error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// AuditFilter narrows audit queries. Zero values mean "no constraint".
type AuditFilter struct {
	ActorID      string
	TargetUserID string
	Action       string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// AuditStore persists immutable audit entries and serves newest-first reads.
type AuditStore interface {
	Insert(ctx context.Context, entry models.AuditLogEntry) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditLogEntry, error)
}

// TokenStore holds password reset tokens between issue and redemption.
type TokenStore interface {
	Put(ctx context.Context, token models.PasswordResetToken) error
	// Consume removes the token and returns it in one step, so a replayed
	// token observes ErrNotFound no matter how calls interleave.
	Consume(ctx context.Context, token string) (models.PasswordResetToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
