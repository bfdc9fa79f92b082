package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isandoval/rbac-admin-be/internal/services"
)

// ResetHandler handles the password reset request and confirmation
// endpoints.
type ResetHandler struct {
	service services.ResetServiceProvider
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(service services.ResetServiceProvider) *ResetHandler {
	return &ResetHandler{service: service}
}

// Request issues a reset token for the submitted email. The response does
// not reveal whether the address exists.
func (h *ResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errorResponse(w, services.ErrInvalidInput)
		return
	}

	if err := h.service.RequestReset(r.Context(), payload.Email); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			errorResponse(w, err)
			return
		}
		log.Error().Err(err).Msg("Failed to process reset request")
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If this email exists, a reset link has been sent.",
	})
}

// Confirm redeems a reset token and sets the new password.
func (h *ResetHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errorResponse(w, services.ErrInvalidInput)
		return
	}

	if err := h.service.ConsumeReset(r.Context(), token, payload.Password); err != nil {
		log.Warn().Err(err).Msg("Failed to consume reset token")
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password reset successfully",
	})
}
