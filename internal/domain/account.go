package domain

import "time"

// AccountStatus represents lifecycle states for a login identity.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Account is a login identity. Role labels are free-form organizational
// names resolved to a capability tier by the role resolver.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
