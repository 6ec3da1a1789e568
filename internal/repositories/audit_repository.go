package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	intconfig "tiketbus/internal/config"
	"tiketbus/internal/domain/models"
)

type AuditRepository struct {
	DB *sql.DB
}

func (r AuditRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// InsertBatch appends audit events in one multi-row INSERT.
func (r AuditRepository) InsertBatch(ctx context.Context, events []models.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(events))
	values := make([]any, 0, len(events)*5)
	for _, ev := range events {
		details := "{}"
		if len(ev.Details) > 0 {
			if b, err := json.Marshal(ev.Details); err == nil {
				details = string(b)
			}
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, ?)")
		values = append(values,
			nullableID(ev.CompanyID),
			nullableID(ev.ActorID),
			ev.Action,
			details,
			ev.CreatedAt,
		)
	}

	_, err := r.db().ExecContext(ctx, `
		INSERT INTO audit_logs (company_id, actor_id, action, details, created_at)
		VALUES `+strings.Join(placeholders, ", "), values...)
	return err
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}
