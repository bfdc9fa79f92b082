package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/isandoval/rbac-admin-be/internal/models"
	"github.com/isandoval/rbac-admin-be/internal/services"
)

// AuditStore is the SQLite-backed implementation of services.AuditStore.
// Entries are insert-only; nothing here updates or deletes them.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Insert writes one audit entry.
func (s *AuditStore) Insert(ctx context.Context, entry models.AuditLogEntry) error {
	var details any
	if len(entry.Details) > 0 {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		details = string(data)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_logs(id, timestamp, actor_id, action, target_user_id, details_json) VALUES(?, ?, ?, ?, ?, ?)",
		entry.ID, entry.Timestamp, entry.ActorID, entry.Action, entry.TargetUserID, details)
	return err
}

// List returns entries newest-first, narrowed by the filter.
func (s *AuditStore) List(ctx context.Context, filter services.AuditFilter) ([]models.AuditLogEntry, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ActorID != "" {
		conds = append(conds, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.TargetUserID != "" {
		conds = append(conds, "target_user_id = ?")
		args = append(args, filter.TargetUserID)
	}
	if filter.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.From != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, *filter.To)
	}

	query := "SELECT id, timestamp, actor_id, action, target_user_id, details_json FROM audit_logs"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var details sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.ActorID, &entry.Action, &entry.TargetUserID, &details); err != nil {
			return nil, err
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
