package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opskit/absence-service/internal/config"
	"github.com/opskit/absence-service/internal/domain"
	"github.com/opskit/absence-service/internal/events"
	"github.com/opskit/absence-service/internal/repository"
	apperrors "github.com/opskit/absence-service/pkg/util/errorutil"
)

// AbsenceService coordinates the absence approval workflow.
type AbsenceService struct {
	absences         repository.AbsenceRepository
	employees        repository.EmployeeRepository
	resolver         *RoleResolver
	audit            *AuditService
	dispatcher       events.Dispatcher
	allowOwnerCancel bool
}

// AbsenceDependencies bundles collaborators for the absence service.
type AbsenceDependencies struct {
	AbsenceRepo  repository.AbsenceRepository
	EmployeeRepo repository.EmployeeRepository
	Resolver     *RoleResolver
	Audit        *AuditService
	Dispatcher   events.Dispatcher
}

// AbsenceCreateInput describes absence creation payload.
type AbsenceCreateInput struct {
	SubjectID       string
	Kind            domain.AbsenceKind
	Period          domain.Period
	Comment         string
	RequestedStatus domain.AbsenceStatus
	// SchedulingImpact, when explicitly false, overrides the derived flag on
	// an auto-validated creation. Nil means derive.
	SchedulingImpact *bool
}

// AbsenceListFilter describes listing filters.
type AbsenceListFilter struct {
	SubjectID  *string
	Statuses   []domain.AbsenceStatus
	Kinds      []domain.AbsenceKind
	PeriodFrom *time.Time
	PeriodTo   *time.Time
	Limit      int
	Offset     int
}

// NewAbsenceService constructs the service.
func NewAbsenceService(cfg config.WorkflowConfig, deps AbsenceDependencies) *AbsenceService {
	return &AbsenceService{
		absences:         deps.AbsenceRepo,
		employees:        deps.EmployeeRepo,
		resolver:         deps.Resolver,
		audit:            deps.Audit,
		dispatcher:       deps.Dispatcher,
		allowOwnerCancel: cfg.AllowOwnerCancel,
	}
}

// Create validates, authorizes and persists a new absence request, applying
// the creation-time auto-validation shortcuts.
func (s *AbsenceService) Create(ctx context.Context, actorID string, input AbsenceCreateInput) (*domain.AbsenceRequest, error) {
	if input.SubjectID == "" {
		return nil, apperrors.NewValidationError("subject_id required", nil)
	}
	if !input.Period.Valid() {
		return nil, apperrors.NewValidationError("malformed period: start must not be after end",
			map[string]any{"start": input.Period.Start, "end": input.Period.End})
	}
	if input.Kind == "" {
		input.Kind = domain.KindOther
	}

	subject, err := s.employees.GetByID(ctx, input.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": input.SubjectID})
		}
		return nil, apperrors.MapError(err)
	}

	tier, err := s.resolver.Classify(ctx, actorID, subject.ID)
	if err != nil {
		return nil, err
	}
	if !tier.CanActOn() {
		return nil, apperrors.NewForbidden("not authorized to create an absence for this employee")
	}

	plan, err := planCreation(tier, subject.HasAccount(), input.RequestedStatus, input.SchedulingImpact)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	request := &domain.AbsenceRequest{
		ExternalKey:      generateAbsenceKey(),
		SubjectID:        subject.ID,
		Kind:             input.Kind,
		Period:           input.Period,
		Status:           plan.Status,
		Comment:          strings.TrimSpace(input.Comment),
		SchedulingImpact: plan.SchedulingImpact,
		CreatedBy:        actorID,
		UpdatedBy:        actorID,
	}
	if plan.StampLevel1 {
		request.Level1ValidatorID = &actorID
		request.Level1ValidatedAt = &now
	}
	if plan.StampLevel2 {
		request.Level2ValidatorID = &actorID
		request.Level2ValidatedAt = &now
	}

	if err := s.absences.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(ctx, actorID, domain.AuditActionCreated, request.ID, map[string]any{
		"subject_id":        request.SubjectID,
		"status":            request.Status,
		"scheduling_impact": request.SchedulingImpact,
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventAbsenceCreated,
		AbsenceID: request.ID,
		Actor:     events.Actor{AccountID: actorID},
		Payload: events.AbsenceCreatedPayload{
			SubjectID:        request.SubjectID,
			Kind:             request.Kind,
			Status:           request.Status,
			SchedulingImpact: request.SchedulingImpact,
			PeriodStart:      request.Period.Start,
			PeriodEnd:        request.Period.End,
		},
	})
	return request, nil
}

// UpdateStatus performs one workflow transition. The conditional update on
// the previously read status doubles as the optimistic concurrency guard:
// when two transitions race, the loser gets a CONFLICT and must reload.
func (s *AbsenceService) UpdateStatus(ctx context.Context, actorID, absenceID string, requested domain.AbsenceStatus) (*domain.AbsenceRequest, error) {
	current, err := s.getRequest(ctx, absenceID)
	if err != nil {
		return nil, err
	}

	tier, err := s.resolver.Classify(ctx, actorID, current.SubjectID)
	if err != nil {
		return nil, err
	}

	ownerMayCancel := s.allowOwnerCancel && tier.IsSelf
	plan, err := planTransition(current.Status, requested, tier, ownerMayCancel)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update := repository.StatusUpdate{
		NewStatus:        plan.Effective,
		SchedulingImpact: plan.SchedulingImpact,
		UpdatedBy:        actorID,
	}
	if plan.StampLevel1 {
		update.Level1ValidatorID = &actorID
		update.Level1ValidatedAt = &now
	}
	if plan.StampLevel2 {
		update.Level2ValidatorID = &actorID
		update.Level2ValidatedAt = &now
	}

	updated, err := s.absences.UpdateStatusIf(ctx, current.ID, current.Status, update)
	if err != nil {
		if errors.Is(err, repository.ErrStatusMismatch) {
			return nil, apperrors.NewConflict("absence status changed concurrently, reload and retry",
				map[string]any{"absence_id": current.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.audit.Record(ctx, actorID, domain.AuditActionStatusChanged, updated.ID, map[string]any{
		"old_status":        current.Status,
		"new_status":        updated.Status,
		"scheduling_impact": updated.SchedulingImpact,
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventAbsenceStatusChanged,
		AbsenceID: updated.ID,
		Actor:     events.Actor{AccountID: actorID},
		Payload: events.AbsenceStatusChangedPayload{
			SubjectID:        updated.SubjectID,
			OldStatus:        current.Status,
			NewStatus:        updated.Status,
			SchedulingImpact: updated.SchedulingImpact,
		},
	})
	return updated, nil
}

// Get returns one request, scoped to HR, the subject or their manager.
func (s *AbsenceService) Get(ctx context.Context, actorID, absenceID string) (*domain.AbsenceRequest, error) {
	request, err := s.getRequest(ctx, absenceID)
	if err != nil {
		return nil, err
	}
	tier, err := s.resolver.Classify(ctx, actorID, request.SubjectID)
	if err != nil {
		return nil, err
	}
	if !tier.CanActOn() {
		return nil, apperrors.NewForbidden("not authorized to read this absence")
	}
	return request, nil
}

// List returns requests visible to the actor: HR sees everything; anyone
// else sees only their own.
func (s *AbsenceService) List(ctx context.Context, actorID string, filter AbsenceListFilter) ([]domain.AbsenceRequest, error) {
	isHR, err := s.resolver.IsHROrAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	repoFilter := repository.AbsenceFilter{
		SubjectID:  filter.SubjectID,
		Statuses:   filter.Statuses,
		Kinds:      filter.Kinds,
		PeriodFrom: filter.PeriodFrom,
		PeriodTo:   filter.PeriodTo,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}

	if !isHR {
		self, err := s.employees.GetByAccountID(ctx, actorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewForbidden("no employee record for this account")
			}
			return nil, apperrors.MapError(err)
		}
		repoFilter.SubjectID = &self.ID
	}

	return s.absences.ListWithFilter(ctx, repoFilter)
}

// ListForEmployee is the manager/HR history boundary over one subject.
func (s *AbsenceService) ListForEmployee(ctx context.Context, actorID, employeeID string, filter AbsenceListFilter) ([]domain.AbsenceRequest, error) {
	tier, err := s.resolver.Classify(ctx, actorID, employeeID)
	if err != nil {
		return nil, err
	}
	if !tier.CanActOn() {
		return nil, apperrors.NewForbidden("not authorized to read absences for this employee")
	}
	repoFilter := repository.AbsenceFilter{
		SubjectID:  &employeeID,
		Statuses:   filter.Statuses,
		Kinds:      filter.Kinds,
		PeriodFrom: filter.PeriodFrom,
		PeriodTo:   filter.PeriodTo,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	return s.absences.ListWithFilter(ctx, repoFilter)
}

// History returns the audit trail for one request, same visibility as Get.
func (s *AbsenceService) History(ctx context.Context, actorID, absenceID string, limit, offset int) ([]domain.AuditEntry, error) {
	if _, err := s.Get(ctx, actorID, absenceID); err != nil {
		return nil, err
	}
	return s.audit.ListForEntity(ctx, absenceID, limit, offset)
}

// Delete is the HR-only administrative removal, outside the state machine.
func (s *AbsenceService) Delete(ctx context.Context, actorID, absenceID string) error {
	isHR, err := s.resolver.IsHROrAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !isHR {
		return apperrors.NewForbidden("only HR may delete an absence")
	}

	request, err := s.getRequest(ctx, absenceID)
	if err != nil {
		return err
	}
	if err := s.absences.Delete(ctx, request.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("absence", map[string]any{"absence_id": absenceID})
		}
		return apperrors.MapError(err)
	}

	s.audit.Record(ctx, actorID, domain.AuditActionDeleted, request.ID, map[string]any{
		"subject_id": request.SubjectID,
		"status":     request.Status,
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventAbsenceDeleted,
		AbsenceID: request.ID,
		Actor:     events.Actor{AccountID: actorID},
		Payload: events.AbsenceDeletedPayload{
			SubjectID: request.SubjectID,
			Status:    request.Status,
		},
	})
	return nil
}

func (s *AbsenceService) getRequest(ctx context.Context, absenceID string) (*domain.AbsenceRequest, error) {
	request, err := s.absences.GetByID(ctx, absenceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("absence", map[string]any{"absence_id": absenceID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func (s *AbsenceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateAbsenceKey() string {
	return "ABS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
