package domain

import "time"

// RequestChangeType captures what changed in a history entry.
type RequestChangeType string

const (
	ChangeTypeStatus               RequestChangeType = "STATUS_CHANGE"
	ChangeTypeAssignment           RequestChangeType = "ASSIGNMENT_CHANGE"
	ChangeTypeOverrideCancellation RequestChangeType = "OVERRIDE_CANCELLATION"
)

// RequestHistory is an immutable audit trail entry for a request.
type RequestHistory struct {
	ID            string
	RequestID     string
	ChangedByRole Role
	ChangedByID   *string
	ChangeType    RequestChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
