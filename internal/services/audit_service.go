package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isandoval/rbac-admin-be/internal/models"
	"github.com/isandoval/rbac-admin-be/internal/notify"
)

// AuditRecorder is the write side of the audit sink, consumed by the other
// services after every privileged mutation.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, targetUserID string, details map[string]string)
}

// AuditServiceProvider defines the interface for the audit sink.
type AuditServiceProvider interface {
	AuditRecorder
	List(ctx context.Context, filter AuditFilter) ([]models.AuditLogEntry, error)
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditService records privileged actions and fans out alerts for the
// high-risk ones. Failures on this path are logged and swallowed: auditing
// must never abort the action that triggered it.
type AuditService struct {
	store      AuditStore
	dispatcher *notify.Dispatcher
}

// NewAuditService creates a new AuditService.
func NewAuditService(store AuditStore, dispatcher *notify.Dispatcher) *AuditService {
	return &AuditService{store: store, dispatcher: dispatcher}
}

// Record validates, persists and classifies one privileged action. Invalid
// input is dropped. The audit write is awaited; notification dispatch is
// detached and best-effort.
func (s *AuditService) Record(ctx context.Context, actorID, action, targetUserID string, details map[string]string) {
	if actorID == "" || targetUserID == "" {
		log.Error().Str("action", action).Msg("Dropping audit entry: missing actor or target id")
		return
	}
	if !models.ValidAuditAction(action) {
		log.Error().Str("action", action).Msg("Dropping audit entry: unknown action")
		return
	}

	entry := models.AuditLogEntry{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		ActorID:      actorID,
		Action:       action,
		TargetUserID: targetUserID,
		Details:      details,
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Str("actor_id", actorID).Msg("Failed to write audit entry")
	}

	if models.IsHighRisk(action, details) {
		s.dispatcher.Dispatch(notify.Alert{
			Action:    action,
			ActorID:   actorID,
			TargetID:  targetUserID,
			Details:   details,
			Timestamp: entry.Timestamp,
		})
	}
}

// List returns audit entries newest-first, honoring the filter and clamping
// the page size.
func (s *AuditService) List(ctx context.Context, filter AuditFilter) ([]models.AuditLogEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Action != "" && !models.ValidAuditAction(filter.Action) {
		return nil, ErrInvalidInput
	}

	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, unavailable("list audit entries", err)
	}
	return entries, nil
}
