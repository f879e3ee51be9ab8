package events

import (
	"time"

	"github.com/opskit/absence-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAbsenceCreated       EventType = "absence_created"
	EventAbsenceStatusChanged EventType = "absence_status_changed"
	EventAbsenceDeleted       EventType = "absence_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string `json:"account_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AbsenceID string      `json:"absence_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AbsenceCreatedPayload payload.
type AbsenceCreatedPayload struct {
	SubjectID        string               `json:"subject_id"`
	Kind             domain.AbsenceKind   `json:"kind"`
	Status           domain.AbsenceStatus `json:"status"`
	SchedulingImpact bool                 `json:"scheduling_impact"`
	PeriodStart      time.Time            `json:"period_start"`
	PeriodEnd        time.Time            `json:"period_end"`
}

// AbsenceStatusChangedPayload payload.
type AbsenceStatusChangedPayload struct {
	SubjectID        string               `json:"subject_id"`
	OldStatus        domain.AbsenceStatus `json:"old_status"`
	NewStatus        domain.AbsenceStatus `json:"new_status"`
	SchedulingImpact bool                 `json:"scheduling_impact"`
}

// AbsenceDeletedPayload payload.
type AbsenceDeletedPayload struct {
	SubjectID string               `json:"subject_id"`
	Status    domain.AbsenceStatus `json:"status"`
}
