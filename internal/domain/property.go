package domain

import "time"

// Property represents a rental building managed by a superintendent.
type Property struct {
	ID                  string
	Code                string
	Name                string
	Address             string
	SuperintendentEmail string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Unit represents a rentable unit within a property.
type Unit struct {
	ID         string
	PropertyID string
	Number     string
	Floor      int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
