package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isandoval/rbac-admin-be/internal/services"
)

// AuditHandler handles read-side queries against the audit trail.
type AuditHandler struct {
	service services.AuditServiceProvider
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(service services.AuditServiceProvider) *AuditHandler {
	return &AuditHandler{service: service}
}

// List returns audit entries newest-first. Supported query parameters:
// limit, offset, actor, target, action, from, to (RFC 3339).
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := services.AuditFilter{
		ActorID:      q.Get("actor"),
		TargetUserID: q.Get("target"),
		Action:       q.Get("action"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		filter.Offset = v
	}
	if t, ok := parseTime(q.Get("from")); ok {
		filter.From = &t
	}
	if t, ok := parseTime(q.Get("to")); ok {
		filter.To = &t
	}

	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query audit log")
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
