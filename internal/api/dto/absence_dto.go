package dto

import (
	"time"

	"github.com/opskit/absence-service/internal/domain"
)

// CreateAbsenceRequest payload.
type CreateAbsenceRequest struct {
	SubjectID        string               `json:"subject_id" validate:"required"`
	Kind             domain.AbsenceKind   `json:"kind"`
	PeriodStart      time.Time            `json:"period_start" validate:"required"`
	PeriodEnd        time.Time            `json:"period_end" validate:"required"`
	DurationHours    *float64             `json:"duration_hours" validate:"omitempty,gt=0"`
	Comment          string               `json:"comment"`
	Status           domain.AbsenceStatus `json:"status"`
	SchedulingImpact *bool                `json:"scheduling_impact"`
}

// UpdateAbsenceStatusRequest payload.
type UpdateAbsenceStatusRequest struct {
	Status domain.AbsenceStatus `json:"status" validate:"required"`
}

// AbsenceResponse represents one absence request.
type AbsenceResponse struct {
	ID                string               `json:"id"`
	ExternalKey       string               `json:"external_key"`
	SubjectID         string               `json:"subject_id"`
	Kind              domain.AbsenceKind   `json:"kind"`
	PeriodStart       time.Time            `json:"period_start"`
	PeriodEnd         time.Time            `json:"period_end"`
	DurationHours     *float64             `json:"duration_hours,omitempty"`
	Status            domain.AbsenceStatus `json:"status"`
	Comment           string               `json:"comment,omitempty"`
	SchedulingImpact  bool                 `json:"scheduling_impact"`
	Level1ValidatorID *string              `json:"level1_validator_id,omitempty"`
	Level1ValidatedAt *time.Time           `json:"level1_validated_at,omitempty"`
	Level2ValidatorID *string              `json:"level2_validator_id,omitempty"`
	Level2ValidatedAt *time.Time           `json:"level2_validated_at,omitempty"`
	CreatedBy         string               `json:"created_by"`
	UpdatedBy         string               `json:"updated_by"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// AuditEntryResponse represents one audit trail record.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	ActorID   string             `json:"actor_id"`
	Action    domain.AuditAction `json:"action"`
	Details   map[string]any     `json:"details,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewAbsenceResponse maps the domain aggregate.
func NewAbsenceResponse(request *domain.AbsenceRequest) AbsenceResponse {
	return AbsenceResponse{
		ID:                request.ID,
		ExternalKey:       request.ExternalKey,
		SubjectID:         request.SubjectID,
		Kind:              request.Kind,
		PeriodStart:       request.Period.Start,
		PeriodEnd:         request.Period.End,
		DurationHours:     request.Period.DurationHours,
		Status:            request.Status,
		Comment:           request.Comment,
		SchedulingImpact:  request.SchedulingImpact,
		Level1ValidatorID: request.Level1ValidatorID,
		Level1ValidatedAt: request.Level1ValidatedAt,
		Level2ValidatorID: request.Level2ValidatorID,
		Level2ValidatedAt: request.Level2ValidatedAt,
		CreatedBy:         request.CreatedBy,
		UpdatedBy:         request.UpdatedBy,
		CreatedAt:         request.CreatedAt,
		UpdatedAt:         request.UpdatedAt,
	}
}

// NewAuditEntryResponse maps one audit record.
func NewAuditEntryResponse(entry domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
}
