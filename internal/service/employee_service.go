package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/opskit/absence-service/internal/domain"
	"github.com/opskit/absence-service/internal/repository"
	apperrors "github.com/opskit/absence-service/pkg/util/errorutil"
)

// EmployeeService manages the employee directory. Mutations are HR-only;
// reads are open to any authenticated account.
type EmployeeService struct {
	employees repository.EmployeeRepository
	resolver  *RoleResolver
}

// EmployeeInput describes create/update payloads.
type EmployeeInput struct {
	Name              string
	Email             *string
	AccountID         *string
	ManagerID         *string
	ActivityManagerID *string
	Active            bool
}

// NewEmployeeService constructs the service.
func NewEmployeeService(employees repository.EmployeeRepository, resolver *RoleResolver) *EmployeeService {
	return &EmployeeService{employees: employees, resolver: resolver}
}

// Create adds an employee record.
func (s *EmployeeService) Create(ctx context.Context, actorID string, input EmployeeInput) (*domain.Employee, error) {
	if err := s.requireHR(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	employee := &domain.Employee{
		Name:              strings.TrimSpace(input.Name),
		Email:             input.Email,
		AccountID:         input.AccountID,
		ManagerID:         input.ManagerID,
		ActivityManagerID: input.ActivityManagerID,
		Active:            input.Active,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// Update replaces an employee's editable fields.
func (s *EmployeeService) Update(ctx context.Context, actorID, employeeID string, input EmployeeInput) (*domain.Employee, error) {
	if err := s.requireHR(ctx, actorID); err != nil {
		return nil, err
	}
	employee, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) != "" {
		employee.Name = strings.TrimSpace(input.Name)
	}
	employee.Email = input.Email
	employee.AccountID = input.AccountID
	employee.ManagerID = input.ManagerID
	employee.ActivityManagerID = input.ActivityManagerID
	employee.Active = input.Active
	if err := s.employees.Update(ctx, employee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// Get fetches one employee.
func (s *EmployeeService) Get(ctx context.Context, employeeID string) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
		}
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// List returns employees matching the filter.
func (s *EmployeeService) List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	return s.employees.List(ctx, filter)
}

func (s *EmployeeService) requireHR(ctx context.Context, actorID string) error {
	isHR, err := s.resolver.IsHROrAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !isHR {
		return apperrors.NewForbidden("HR role required")
	}
	return nil
}
