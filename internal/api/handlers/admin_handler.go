package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isandoval/rbac-admin-be/internal/auth"
	"github.com/isandoval/rbac-admin-be/internal/services"
)

// AdminHandler handles the admin panel endpoints: user listing, role
// mutation and account deletion.
type AdminHandler struct {
	users services.UserServiceProvider
	roles services.RoleServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users services.UserServiceProvider, roles services.RoleServiceProvider) *AdminHandler {
	return &AdminHandler{users: users, roles: roles}
}

// ListUsers returns every account plus the current admin count.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, adminCount, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users":      users,
		"adminCount": adminCount,
	})
}

// RolePayload defines the structure for role mutation requests.
type RolePayload struct {
	UserID  string `json:"userId"`
	NewRole string `json:"newRole"`
}

// UpdateRole applies a role change on behalf of the authenticated admin.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload RolePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		status, kind := errorKind(services.ErrInvalidInput)
		writeJSON(w, status, map[string]interface{}{"ok": false, "errorKind": kind})
		return
	}

	change, err := h.roles.UpdateRole(r.Context(), claims.UserID, claims.Role, payload.UserID, payload.NewRole)
	if err != nil {
		log.Warn().Err(err).
			Str("actor_id", claims.UserID).
			Str("target_id", payload.UserID).
			Str("requested_role", payload.NewRole).
			Msg("Role mutation rejected")
		status, kind := errorKind(err)
		writeJSON(w, status, map[string]interface{}{"ok": false, "errorKind": kind})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"appliedRole": change.AppliedRole,
	})
}

// DeleteUser handles the permanent deletion of a user account.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.users.DeleteUser(r.Context(), claims.UserID, claims.Role, id); err != nil {
		log.Warn().Err(err).Str("actor_id", claims.UserID).Str("target_id", id).Msg("Failed to delete user")
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
