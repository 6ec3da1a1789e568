package models

import "time"

// AuditEvent is an append-only operational record. CompanyID 0 means the
// event is platform-scoped.
type AuditEvent struct {
	ID        int64          `json:"id"`
	CompanyID int64          `json:"company_id,omitempty"`
	ActorID   int64          `json:"actor_id,omitempty"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
