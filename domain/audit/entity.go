package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LogEntry is one persisted audit record.
type LogEntry struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID           uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	UserID       uuid.UUID      `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Action       string         `bun:"action,notnull" json:"action"`
	ResourceType string         `bun:"resource_type,notnull" json:"resource_type"`
	ResourceID   *uuid.UUID     `bun:"resource_id,type:uuid" json:"resource_id,omitempty"`
	Details      map[string]any `bun:"details,type:jsonb" json:"details,omitempty"`
	IPAddress    string         `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent    string         `bun:"user_agent" json:"user_agent,omitempty"`
	CreatedAt    time.Time      `bun:"created_at,notnull,default:now()" json:"created_at"`
}

// Entry is the write-side payload handed to the sink.
type Entry struct {
	UserID       uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	Details      map[string]any
	IPAddress    string
	UserAgent    string
}

// QueryFilter narrows an audit query. Zero-valued fields are ignored.
type QueryFilter struct {
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Action       string     `json:"action,omitempty"`
	ResourceType string     `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID `json:"resource_id,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
}
