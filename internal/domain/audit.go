package domain

import "time"

// AuditAction captures what an audit entry records.
type AuditAction string

const (
	AuditActionCreated       AuditAction = "ABSENCE_CREATED"
	AuditActionStatusChanged AuditAction = "ABSENCE_STATUS_CHANGED"
	AuditActionDeleted       AuditAction = "ABSENCE_DELETED"
)

// AuditEntry is an immutable trail record. Writes are best-effort and never
// fail the transition that produced them.
type AuditEntry struct {
	ID         string
	ActorID    string
	Action     AuditAction
	EntityType string
	EntityID   string
	Details    map[string]any
	CreatedAt  time.Time
}
