package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opskit/absence-service/internal/domain"
	apperrors "github.com/opskit/absence-service/pkg/util/errorutil"
)

const (
	accHR      = "acc-hr"
	accManager = "acc-manager"
	accWorker  = "acc-worker"
	accOther   = "acc-other"

	empManager = "emp-manager"
	empWorker  = "emp-worker"
	empTemp    = "emp-temp"
	empOther   = "emp-other"
)

// seedOrg installs a small org chart: a manager with one account-holding
// subordinate and one record-only subordinate, an HR account without an
// employee record, and an unrelated employee.
func seedOrg(f *fixture) {
	f.accounts.addAccount(accHR, "rh")
	f.accounts.addAccount(accManager)
	f.accounts.addAccount(accWorker)
	f.accounts.addAccount(accOther)

	f.employees.add(domain.Employee{ID: empManager, Name: "Mona Manager", AccountID: strPtr(accManager), Active: true})
	f.employees.add(domain.Employee{ID: empWorker, Name: "Walid Worker", AccountID: strPtr(accWorker), ManagerID: strPtr(empManager), Active: true})
	f.employees.add(domain.Employee{ID: empTemp, Name: "Tess Temp", ManagerID: strPtr(empManager), Active: true})
	f.employees.add(domain.Employee{ID: empOther, Name: "Omar Other", AccountID: strPtr(accOther), Active: true})
}

func newSeededFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(workflowConfig())
	seedOrg(f)
	return f
}

func TestCreateByHRForOtherIsAutoValidated(t *testing.T) {
	f := newSeededFixture(t)

	created, err := f.service.Create(context.Background(), accHR, AbsenceCreateInput{
		SubjectID: empWorker,
		Kind:      domain.KindPaidLeave,
		Period:    validPeriod(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusLevel2Approved, created.Status)
	assert.True(t, created.SchedulingImpact)
	require.NotNil(t, created.Level1ValidatorID)
	require.NotNil(t, created.Level2ValidatorID)
	assert.Equal(t, accHR, *created.Level1ValidatorID)
	assert.Equal(t, accHR, *created.Level2ValidatorID)
	assert.NotNil(t, created.Level1ValidatedAt)
	assert.NotNil(t, created.Level2ValidatedAt)
	assert.True(t, strings.HasPrefix(created.ExternalKey, "ABS-"))

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, domain.AuditActionCreated, f.audit.entries[0].Action)
	assert.Equal(t, accHR, f.audit.entries[0].ActorID)
}

func TestCreateByHRHonorsExplicitImpactOff(t *testing.T) {
	f := newSeededFixture(t)

	created, err := f.service.Create(context.Background(), accHR, AbsenceCreateInput{
		SubjectID:        empWorker,
		Kind:             domain.KindTraining,
		Period:           validPeriod(),
		SchedulingImpact: boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusLevel2Approved, created.Status)
	assert.False(t, created.SchedulingImpact)
}

func TestCreateByManagerForRecordOnlySubordinate(t *testing.T) {
	f := newSeededFixture(t)

	created, err := f.service.Create(context.Background(), accManager, AbsenceCreateInput{
		SubjectID: empTemp,
		Kind:      domain.KindSickLeave,
		Period:    validPeriod(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingLevel2, created.Status)
	require.NotNil(t, created.Level1ValidatorID)
	assert.Equal(t, accManager, *created.Level1ValidatorID)
	assert.Nil(t, created.Level2ValidatorID)
	assert.False(t, created.SchedulingImpact)
}

func TestCreateBySelfStartsAtPendingLevel1(t *testing.T) {
	f := newSeededFixture(t)

	created, err := f.service.Create(context.Background(), accWorker, AbsenceCreateInput{
		SubjectID: empWorker,
		Kind:      domain.KindPaidLeave,
		Period:    validPeriod(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingLevel1, created.Status)
	assert.Nil(t, created.Level1ValidatorID)
	assert.Nil(t, created.Level2ValidatorID)
	assert.False(t, created.SchedulingImpact)
}

func TestCreateByUnrelatedPrincipalPersistsNothing(t *testing.T) {
	f := newSeededFixture(t)

	_, err := f.service.Create(context.Background(), accOther, AbsenceCreateInput{
		SubjectID: empWorker,
		Period:    validPeriod(),
	})
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
	assert.Zero(t, f.absences.count())
	assert.Empty(t, f.audit.entries)
}

func TestCreateRejectsMalformedPeriodBeforePersisting(t *testing.T) {
	f := newSeededFixture(t)

	period := validPeriod()
	period.Start, period.End = period.End, period.Start
	_, err := f.service.Create(context.Background(), accWorker, AbsenceCreateInput{
		SubjectID: empWorker,
		Period:    period,
	})
	assert.Equal(t, apperrors.CodeValidationFailed, errCode(t, err))
	assert.Zero(t, f.absences.count())
}

func TestCreateUnknownSubject(t *testing.T) {
	f := newSeededFixture(t)

	_, err := f.service.Create(context.Background(), accHR, AbsenceCreateInput{
		SubjectID: "emp-ghost",
		Period:    validPeriod(),
	})
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))
}

func TestCreateSucceedsWhenAuditSinkFails(t *testing.T) {
	f := newSeededFixture(t)
	f.audit.failErr = errors.New("audit store down")

	created, err := f.service.Create(context.Background(), accWorker, AbsenceCreateInput{
		SubjectID: empWorker,
		Period:    validPeriod(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingLevel1, created.Status)
}

func TestFullApprovalLifecycle(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{
		SubjectID: empWorker,
		Kind:      domain.KindPaidLeave,
		Period:    validPeriod(),
	})
	require.NoError(t, err)

	afterL1, err := f.service.UpdateStatus(ctx, accManager, created.ID, domain.StatusLevel1Approved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingLevel2, afterL1.Status)
	require.NotNil(t, afterL1.Level1ValidatorID)
	assert.Equal(t, accManager, *afterL1.Level1ValidatorID)
	assert.Nil(t, afterL1.Level2ValidatorID)
	assert.False(t, afterL1.SchedulingImpact)

	_, err = f.service.UpdateStatus(ctx, accManager, created.ID, domain.StatusLevel2Approved)
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))

	afterL2, err := f.service.UpdateStatus(ctx, accHR, created.ID, domain.StatusLevel2Approved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLevel2Approved, afterL2.Status)
	require.NotNil(t, afterL2.Level2ValidatorID)
	assert.Equal(t, accHR, *afterL2.Level2ValidatorID)
	assert.True(t, afterL2.SchedulingImpact)

	applied, err := f.service.UpdateStatus(ctx, accHR, created.ID, domain.StatusApplied)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApplied, applied.Status)
	assert.True(t, applied.SchedulingImpact)

	// create + three status changes
	assert.Len(t, f.audit.entries, 4)
}

func TestUpdateStatusConcurrentTransitionConflicts(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{
		SubjectID: empWorker,
		Period:    validPeriod(),
	})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, accManager, created.ID, domain.StatusLevel1Approved)
	require.NoError(t, err)

	// a second approver still sees the pre-transition snapshot
	stale := domain.StatusPendingLevel1
	f.absences.staleReadStatus = &stale

	_, err = f.service.UpdateStatus(ctx, accHR, created.ID, domain.StatusLevel1Approved)
	assert.Equal(t, apperrors.CodeConflict, errCode(t, err))
}

func TestUpdateStatusOutOfTerminalState(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{
		SubjectID: empWorker,
		Period:    validPeriod(),
	})
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, accHR, created.ID, domain.StatusCancelled)
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, accHR, created.ID, domain.StatusLevel1Approved)
	assert.Equal(t, apperrors.CodeInvalidTransition, errCode(t, err))
}

func TestOwnerCancellationPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by default", func(t *testing.T) {
		f := newSeededFixture(t)
		created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{
			SubjectID: empWorker,
			Period:    validPeriod(),
		})
		require.NoError(t, err)

		_, err = f.service.UpdateStatus(ctx, accWorker, created.ID, domain.StatusCancelled)
		assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
	})

	t.Run("enabled by configuration", func(t *testing.T) {
		cfg := workflowConfig()
		cfg.AllowOwnerCancel = true
		f := newFixture(cfg)
		seedOrg(f)

		created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{
			SubjectID: empWorker,
			Period:    validPeriod(),
		})
		require.NoError(t, err)

		cancelled, err := f.service.UpdateStatus(ctx, accWorker, created.ID, domain.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)
		assert.False(t, cancelled.SchedulingImpact)
	})
}

func TestGetVisibility(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{
		SubjectID: empWorker,
		Period:    validPeriod(),
	})
	require.NoError(t, err)

	for _, actor := range []string{accWorker, accManager, accHR} {
		got, err := f.service.Get(ctx, actor, created.ID)
		require.NoError(t, err, "actor %s", actor)
		assert.Equal(t, created.ID, got.ID)
	}

	_, err = f.service.Get(ctx, accOther, created.ID)
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
}

func TestListScoping(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{SubjectID: empWorker, Period: validPeriod()})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, accOther, AbsenceCreateInput{SubjectID: empOther, Period: validPeriod()})
	require.NoError(t, err)

	all, err := f.service.List(ctx, accHR, AbsenceListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.service.List(ctx, accWorker, AbsenceListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, empWorker, own[0].SubjectID)

	// an account with no employee record has nothing to list
	f.accounts.addAccount("acc-orphan")
	_, err = f.service.List(ctx, "acc-orphan", AbsenceListFilter{})
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
}

func TestListForEmployeeRequiresRelationship(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, accManager, AbsenceCreateInput{SubjectID: empTemp, Period: validPeriod()})
	require.NoError(t, err)

	listed, err := f.service.ListForEmployee(ctx, accManager, empTemp, AbsenceListFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = f.service.ListForEmployee(ctx, accOther, empTemp, AbsenceListFilter{})
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
}

func TestHistoryReturnsAuditTrail(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{SubjectID: empWorker, Period: validPeriod()})
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(ctx, accManager, created.ID, domain.StatusLevel1Approved)
	require.NoError(t, err)

	trail, err := f.service.History(ctx, accWorker, created.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, domain.AuditActionCreated, trail[0].Action)
	assert.Equal(t, domain.AuditActionStatusChanged, trail[1].Action)
}

func TestDeleteIsHROnly(t *testing.T) {
	f := newSeededFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, accWorker, AbsenceCreateInput{SubjectID: empWorker, Period: validPeriod()})
	require.NoError(t, err)

	err = f.service.Delete(ctx, accWorker, created.ID)
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))

	require.NoError(t, f.service.Delete(ctx, accHR, created.ID))
	assert.Zero(t, f.absences.count())

	err = f.service.Delete(ctx, accHR, created.ID)
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))
}
