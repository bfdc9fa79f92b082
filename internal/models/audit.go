package models

import "time"

// Audit actions form a closed enumeration; entries with any other action are
// rejected before they reach the store.
const (
	ActionUpdateRole      = "UPDATE_ROLE"
	ActionDeleteUser      = "DELETE_USER"
	ActionResetPassword   = "RESET_PASSWORD"
	ActionCreateUser      = "CREATE_USER"
	ActionLoginSuccess    = "LOGIN_SUCCESS"
	ActionLoginFailed     = "LOGIN_FAILED"
	ActionPasswordChanged = "PASSWORD_CHANGED"
)

// ValidAuditAction reports whether action belongs to the enumeration.
func ValidAuditAction(action string) bool {
	switch action {
	case ActionUpdateRole, ActionDeleteUser, ActionResetPassword,
		ActionCreateUser, ActionLoginSuccess, ActionLoginFailed,
		ActionPasswordChanged:
		return true
	}
	return false
}

// Detail keys used on role-change entries.
const (
	DetailPreviousRole = "previousRole"
	DetailNewRole      = "newRole"
)

// AuditLogEntry is an immutable record of a privileged action. Entries are
// only ever inserted; nothing in the application updates or deletes them.
type AuditLogEntry struct {
	ID           string            `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	ActorID      string            `json:"actorId"`
	Action       string            `json:"action"`
	TargetUserID string            `json:"targetUserId"`
	Details      map[string]string `json:"details,omitempty"`
}

// IsHighRisk classifies an audited action. Deletions and password resets are
// always high risk; a role update is high risk only when it demotes an admin
// back to a regular user.
func IsHighRisk(action string, details map[string]string) bool {
	switch action {
	case ActionDeleteUser, ActionResetPassword:
		return true
	case ActionUpdateRole:
		return details[DetailPreviousRole] == RoleAdmin && details[DetailNewRole] == RoleUser
	}
	return false
}
