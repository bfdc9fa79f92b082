package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the service layer. Handlers map these onto
// HTTP statuses and wire-level error kinds.
var (
	ErrForbidden          = errors.New("caller lacks privilege")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSelfDemotion       = errors.New("admins cannot demote themselves")
	ErrLastAdmin          = errors.New("cannot demote the last remaining admin")
	ErrNotFound           = errors.New("not found")
	ErrTokenConsumed      = errors.New("token invalid or expired")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOAuthOnly          = errors.New("account uses an external sign-in provider")
	ErrUnavailable        = errors.New("service unavailable")
)

// unavailable wraps a storage connectivity failure so callers see
// ErrUnavailable while the underlying cause stays in the message.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
