package services

import (
	"context"
	"errors"

	"github.com/isandoval/rbac-admin-be/internal/models"
)

// RoleChange describes an applied role mutation.
type RoleChange struct {
	TargetUserID string `json:"targetUserId"`
	PreviousRole string `json:"previousRole"`
	AppliedRole  string `json:"appliedRole"`
}

// RoleServiceProvider defines the interface for role mutations.
type RoleServiceProvider interface {
	UpdateRole(ctx context.Context, actorID, actorRole, targetUserID, requestedRole string) (RoleChange, error)
}

// RoleService validates and applies role changes. Checks run in a fixed
// order and the first failure wins; a rejection performs no write.
type RoleService struct {
	users UserStore
	audit AuditRecorder
}

// NewRoleService creates a new RoleService.
func NewRoleService(users UserStore, audit AuditRecorder) *RoleService {
	return &RoleService{users: users, audit: audit}
}

// UpdateRole applies requestedRole to the target user on behalf of the
// acting admin. The last-admin check is pushed into the store as a single
// conditional write, so two concurrent demotions cannot empty the admin set
// between a count and an update. Setting a role to its current value is a
// valid no-op change and is still audited.
func (s *RoleService) UpdateRole(ctx context.Context, actorID, actorRole, targetUserID, requestedRole string) (RoleChange, error) {
	if actorRole != models.RoleAdmin {
		return RoleChange{}, ErrForbidden
	}
	if actorID == "" || targetUserID == "" || !models.ValidRole(requestedRole) {
		return RoleChange{}, ErrInvalidInput
	}
	if actorID == targetUserID && requestedRole != models.RoleAdmin {
		return RoleChange{}, ErrSelfDemotion
	}

	target, err := s.users.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RoleChange{}, ErrNotFound
		}
		return RoleChange{}, unavailable("load target user", err)
	}

	applied, err := s.users.UpdateRoleGuarded(ctx, targetUserID, requestedRole)
	if err != nil {
		return RoleChange{}, unavailable("update role", err)
	}
	if !applied {
		return RoleChange{}, ErrLastAdmin
	}

	s.audit.Record(ctx, actorID, models.ActionUpdateRole, targetUserID, map[string]string{
		models.DetailPreviousRole: target.Role,
		models.DetailNewRole:      requestedRole,
	})

	return RoleChange{
		TargetUserID: targetUserID,
		PreviousRole: target.Role,
		AppliedRole:  requestedRole,
	}, nil
}
