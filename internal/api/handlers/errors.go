package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isandoval/rbac-admin-be/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorKind maps a service error onto an HTTP status and a stable wire-level
// kind string.
func errorKind(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, "InvalidInput"
	case errors.Is(err, services.ErrSelfDemotion):
		return http.StatusBadRequest, "SelfDemotionForbidden"
	case errors.Is(err, services.ErrLastAdmin):
		return http.StatusBadRequest, "LastAdminProtected"
	case errors.Is(err, services.ErrTokenConsumed):
		return http.StatusBadRequest, "AlreadyConsumed"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "EmailTaken"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "InvalidCredentials"
	case errors.Is(err, services.ErrOAuthOnly):
		return http.StatusUnauthorized, "OAuthOnly"
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable, "ServiceUnavailable"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

var kindMessages = map[string]string{
	"Forbidden":             "admin privileges required",
	"InvalidInput":          "invalid request",
	"SelfDemotionForbidden": "admins cannot demote themselves",
	"LastAdminProtected":    "cannot demote the last remaining admin",
	"AlreadyConsumed":       "token invalid or expired",
	"NotFound":              "resource not found",
	"EmailTaken":            "email already exists",
	"InvalidCredentials":    "invalid credentials",
	"OAuthOnly":             "account uses an external sign-in provider",
	"ServiceUnavailable":    "service temporarily unavailable, please try again later",
	"Internal":              "an unexpected error occurred",
}

func errorResponse(w http.ResponseWriter, err error) {
	status, kind := errorKind(err)
	writeJSON(w, status, map[string]string{
		"error":   kind,
		"message": kindMessages[kind],
	})
}
