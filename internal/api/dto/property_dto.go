package dto

import "time"

// CreatePropertyRequest payload.
type CreatePropertyRequest struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	Address             string `json:"address"`
	SuperintendentEmail string `json:"superintendent_email"`
}

// UpdatePropertyRequest payload; nil fields are left unchanged.
type UpdatePropertyRequest struct {
	Name                *string `json:"name"`
	Address             *string `json:"address"`
	SuperintendentEmail *string `json:"superintendent_email"`
	IsActive            *bool   `json:"is_active"`
}

// PropertyResponse describes a property.
type PropertyResponse struct {
	ID                  string    `json:"id"`
	Code                string    `json:"code"`
	Name                string    `json:"name"`
	Address             string    `json:"address"`
	SuperintendentEmail string    `json:"superintendent_email"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}

// CreateUnitRequest payload.
type CreateUnitRequest struct {
	Number string `json:"number"`
	Floor  int    `json:"floor"`
}

// UnitResponse describes a unit.
type UnitResponse struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Floor    int    `json:"floor"`
	IsActive bool   `json:"is_active"`
}
