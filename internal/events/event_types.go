package events

import (
	"time"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventWorkerAssigned       EventType = "worker_assigned"
	EventAssignmentCompleted  EventType = "assignment_completed"
	EventBookingCancelled     EventType = "booking_cancelled"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role      domain.Role `json:"role"`
	AccountID *string     `json:"account_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Code         string         `json:"code"`
	PropertyCode string         `json:"property_code"`
	UnitNumber   string         `json:"unit_number"`
	Urgency      domain.Urgency `json:"urgency"`
	Title        string         `json:"title"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
	Comment   string               `json:"comment,omitempty"`
}

// WorkerAssignedPayload payload.
type WorkerAssignedPayload struct {
	WorkerEmail     string    `json:"worker_email"`
	WorkOrderNumber string    `json:"work_order_number"`
	ScheduledDate   time.Time `json:"scheduled_date"`
}

// AssignmentCompletedPayload payload.
type AssignmentCompletedPayload struct {
	WorkerEmail     string `json:"worker_email"`
	WorkOrderNumber string `json:"work_order_number"`
	Successful      bool   `json:"successful"`
}

// BookingCancelledPayload records an emergency-override revocation.
type BookingCancelledPayload struct {
	WorkerEmail         string    `json:"worker_email"`
	WorkOrderNumber     string    `json:"work_order_number"`
	OriginalDate        time.Time `json:"original_date"`
	OverridingRequestID string    `json:"overriding_request_id"`
	Justification       string    `json:"justification"`
}
