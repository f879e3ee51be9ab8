package dto

import (
	"time"

	"github.com/opskit/absence-service/internal/domain"
)

// EmployeeRequest payload for create/update.
type EmployeeRequest struct {
	Name              string  `json:"name" validate:"required"`
	Email             *string `json:"email" validate:"omitempty,email"`
	AccountID         *string `json:"account_id"`
	ManagerID         *string `json:"manager_id"`
	ActivityManagerID *string `json:"activity_manager_id"`
	Active            bool    `json:"active"`
}

// EmployeeResponse represents one employee.
type EmployeeResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             *string   `json:"email,omitempty"`
	AccountID         *string   `json:"account_id,omitempty"`
	ManagerID         *string   `json:"manager_id,omitempty"`
	ActivityManagerID *string   `json:"activity_manager_id,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewEmployeeResponse maps the domain entity.
func NewEmployeeResponse(employee *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                employee.ID,
		Name:              employee.Name,
		Email:             employee.Email,
		AccountID:         employee.AccountID,
		ManagerID:         employee.ManagerID,
		ActivityManagerID: employee.ActivityManagerID,
		Active:            employee.Active,
		CreatedAt:         employee.CreatedAt,
		UpdatedAt:         employee.UpdatedAt,
	}
}
