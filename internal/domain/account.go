package domain

import "time"

// Role enumerates who may act on the system.
type Role string

const (
	RoleTenant                 Role = "TENANT"
	RolePropertySuperintendent Role = "PROPERTY_SUPERINTENDENT"
	RoleWorker                 Role = "WORKER"
	RoleSystemAdmin            Role = "SYSTEM_ADMIN"
)

// AccountStatus represents lifecycle states for a login account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

// Account is the login identity for tenants, superintendents, workers and
// administrators.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
