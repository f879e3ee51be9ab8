package domain

import "time"

// AbsenceStatus enumerates workflow states for absence requests.
type AbsenceStatus string

const (
	StatusPendingLevel1  AbsenceStatus = "pending_level1"
	StatusLevel1Approved AbsenceStatus = "level1_approved"
	StatusLevel1Rejected AbsenceStatus = "level1_rejected"
	StatusPendingLevel2  AbsenceStatus = "pending_level2"
	StatusLevel2Approved AbsenceStatus = "level2_approved"
	StatusLevel2Rejected AbsenceStatus = "level2_rejected"
	StatusApplied        AbsenceStatus = "applied"
	StatusCancelled      AbsenceStatus = "cancelled"
)

// IsValid reports whether the value belongs to the status enumeration.
func (s AbsenceStatus) IsValid() bool {
	switch s {
	case StatusPendingLevel1, StatusLevel1Approved, StatusLevel1Rejected,
		StatusPendingLevel2, StatusLevel2Approved, StatusLevel2Rejected,
		StatusApplied, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s AbsenceStatus) IsTerminal() bool {
	switch s {
	case StatusLevel1Rejected, StatusLevel2Rejected, StatusCancelled:
		return true
	}
	return false
}

// IsAuthoritative reports whether the absence must be reserved against the
// subject's availability by downstream planning.
func (s AbsenceStatus) IsAuthoritative() bool {
	return s == StatusLevel2Approved || s == StatusApplied
}

// AbsenceKind enumerates absence categories. Informational only; the
// workflow does not branch on it.
type AbsenceKind string

const (
	KindPaidLeave          AbsenceKind = "PAID_LEAVE"
	KindSickLeave          AbsenceKind = "SICK_LEAVE"
	KindTraining           AbsenceKind = "TRAINING"
	KindExternalAssignment AbsenceKind = "EXTERNAL_ASSIGNMENT"
	KindOther              AbsenceKind = "OTHER"
)

// Period is the inclusive date range an absence covers.
type Period struct {
	Start         time.Time
	End           time.Time
	DurationHours *float64
}

// Valid reports whether the period is well formed.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && !p.End.Before(p.Start)
}

// AbsenceRequest is the aggregate governed by the approval workflow.
type AbsenceRequest struct {
	ID          string
	ExternalKey string
	SubjectID   string
	Kind        AbsenceKind
	Period      Period
	Status      AbsenceStatus
	Comment     string

	// Derived: true iff the status is authoritative for scheduling.
	SchedulingImpact bool

	Level1ValidatorID *string
	Level1ValidatedAt *time.Time
	Level2ValidatorID *string
	Level2ValidatedAt *time.Time

	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
