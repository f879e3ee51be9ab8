package domain

import "time"

// Employee models a person absences apply to. Record-only collaborators have
// no linked account and cannot log in; their absences are entered on their
// behalf by a manager or HR.
type Employee struct {
	ID                string
	Name              string
	Email             *string
	AccountID         *string
	ManagerID         *string
	ActivityManagerID *string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasAccount reports whether the employee has a login identity.
func (e *Employee) HasAccount() bool {
	return e.AccountID != nil && *e.AccountID != ""
}

// IsManagedBy reports whether the given employee id is the primary or
// activity manager of this employee. Both relationships confer the same
// authority over the absence workflow.
func (e *Employee) IsManagedBy(employeeID string) bool {
	if employeeID == "" {
		return false
	}
	if e.ManagerID != nil && *e.ManagerID == employeeID {
		return true
	}
	if e.ActivityManagerID != nil && *e.ActivityManagerID == employeeID {
		return true
	}
	return false
}
