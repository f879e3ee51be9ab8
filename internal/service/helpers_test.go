package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/opskit/absence-service/internal/config"
	"github.com/opskit/absence-service/internal/domain"
	"github.com/opskit/absence-service/internal/repository"
)

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	byID      map[string]domain.Employee
	byAccount map[string]string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		byID:      map[string]domain.Employee{},
		byAccount: map[string]string{},
	}
}

func (f *fakeEmployeeRepo) add(employee domain.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[employee.ID] = employee
	if employee.AccountID != nil {
		f.byAccount[*employee.AccountID] = employee.ID
	}
}

func (f *fakeEmployeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	if employee.ID == "" {
		employee.ID = fmt.Sprintf("emp-%d", len(f.byID)+1)
	}
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = employee.CreatedAt
	f.add(*employee)
	return nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[employee.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.byID[employee.ID] = *employee
	if employee.AccountID != nil {
		f.byAccount[*employee.AccountID] = employee.ID
	}
	return nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	employee, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := employee
	return &clone, nil
}

func (f *fakeEmployeeRepo) GetByAccountID(_ context.Context, accountID string) (*domain.Employee, error) {
	f.mu.Lock()
	id, ok := f.byAccount[accountID]
	f.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.GetByID(context.Background(), id)
}

func (f *fakeEmployeeRepo) List(_ context.Context, _ repository.EmployeeFilter) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Employee, 0, len(f.byID))
	for _, employee := range f.byID {
		out = append(out, employee)
	}
	return out, nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	roles    map[string][]string
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		accounts: map[string]domain.Account{},
		roles:    map[string][]string{},
	}
}

func (f *fakeAccountRepo) addAccount(id string, labels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id] = domain.Account{ID: id, Status: domain.AccountStatusActive}
	f.roles[id] = labels
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == "" {
		account.ID = fmt.Sprintf("acc-%d", len(f.accounts)+1)
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeAccountRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = hash
	f.accounts[id] = account
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := account
	return &clone, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			clone := account
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) ListRoleLabels(_ context.Context, accountID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.roles[accountID]...), nil
}

type fakeAbsenceRepo struct {
	mu       sync.Mutex
	requests map[string]domain.AbsenceRequest
	seq      int

	// staleReadStatus, when set, is reported by GetByID instead of the
	// stored status, simulating a concurrent transition committed between
	// the caller's read and its conditional update.
	staleReadStatus *domain.AbsenceStatus
}

func newFakeAbsenceRepo() *fakeAbsenceRepo {
	return &fakeAbsenceRepo{requests: map[string]domain.AbsenceRequest{}}
}

func (f *fakeAbsenceRepo) Create(_ context.Context, request *domain.AbsenceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	request.ID = fmt.Sprintf("abs-%d", f.seq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	f.requests[request.ID] = *request
	return nil
}

func (f *fakeAbsenceRepo) GetByID(_ context.Context, id string) (*domain.AbsenceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := request
	if f.staleReadStatus != nil {
		clone.Status = *f.staleReadStatus
	}
	return &clone, nil
}

func (f *fakeAbsenceRepo) ListWithFilter(_ context.Context, filter repository.AbsenceFilter) ([]domain.AbsenceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.AbsenceRequest{}
	for _, request := range f.requests {
		if filter.SubjectID != nil && request.SubjectID != *filter.SubjectID {
			continue
		}
		out = append(out, request)
	}
	return out, nil
}

func (f *fakeAbsenceRepo) UpdateStatusIf(_ context.Context, id string, expected domain.AbsenceStatus, update repository.StatusUpdate) (*domain.AbsenceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok || request.Status != expected {
		return nil, repository.ErrStatusMismatch
	}
	request.Status = update.NewStatus
	request.SchedulingImpact = update.SchedulingImpact
	if update.Level1ValidatorID != nil {
		request.Level1ValidatorID = update.Level1ValidatorID
		request.Level1ValidatedAt = update.Level1ValidatedAt
	}
	if update.Level2ValidatorID != nil {
		request.Level2ValidatorID = update.Level2ValidatorID
		request.Level2ValidatedAt = update.Level2ValidatedAt
	}
	request.UpdatedBy = update.UpdatedBy
	request.UpdatedAt = time.Now()
	f.requests[id] = request
	clone := request
	return &clone, nil
}

func (f *fakeAbsenceRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.requests, id)
	return nil
}

func (f *fakeAbsenceRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	failErr error
}

func (f *fakeAuditRepo) Append(_ context.Context, entry *domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	entry.ID = fmt.Sprintf("audit-%d", len(f.entries)+1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByEntity(_ context.Context, entityType, entityID string, _, _ int) ([]domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.AuditEntry{}
	for _, entry := range f.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// fixture wires a full absence service over in-memory fakes.
type fixture struct {
	employees *fakeEmployeeRepo
	accounts  *fakeAccountRepo
	absences  *fakeAbsenceRepo
	audit     *fakeAuditRepo
	resolver  *RoleResolver
	service   *AbsenceService
}

func workflowConfig() config.WorkflowConfig {
	return config.WorkflowConfig{
		HRRoleLabels: []string{"admin", "rh", "formation", "dosimetrie"},
	}
}

func newFixture(cfg config.WorkflowConfig) *fixture {
	employees := newFakeEmployeeRepo()
	accounts := newFakeAccountRepo()
	absences := newFakeAbsenceRepo()
	audit := &fakeAuditRepo{}

	resolver := NewRoleResolver(cfg, RoleResolverDependencies{
		AccountRepo:  accounts,
		EmployeeRepo: employees,
	})
	svc := NewAbsenceService(cfg, AbsenceDependencies{
		AbsenceRepo:  absences,
		EmployeeRepo: employees,
		Resolver:     resolver,
		Audit:        NewAuditService(audit, nil),
	})
	return &fixture{
		employees: employees,
		accounts:  accounts,
		absences:  absences,
		audit:     audit,
		resolver:  resolver,
		service:   svc,
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func validPeriod() domain.Period {
	return domain.Period{
		Start: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
	}
}
