package dto

import (
	"time"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	PropertyCode string         `json:"property_code"`
	UnitNumber   string         `json:"unit_number"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Urgency      domain.Urgency `json:"urgency"`
}

// TransitionRequest carries an optional comment for submit, decline and
// close endpoints.
type TransitionRequest struct {
	Comment string `json:"comment"`
}

// ScheduleRequest payload for booking a worker onto a request.
type ScheduleRequest struct {
	WorkerEmail   string    `json:"worker_email"`
	ScheduledDate time.Time `json:"scheduled_date"`
}

// CompleteRequest payload for the worker completion endpoint.
type CompleteRequest struct {
	Successful bool   `json:"successful"`
	Notes      string `json:"notes"`
}

// RequestSummary response.
type RequestSummary struct {
	ID                  string               `json:"id"`
	Code                string               `json:"code"`
	PropertyCode        string               `json:"property_code"`
	UnitNumber          string               `json:"unit_number"`
	Title               string               `json:"title"`
	Urgency             domain.Urgency       `json:"urgency"`
	Status              domain.RequestStatus `json:"status"`
	AssignedWorkerEmail *string              `json:"assigned_worker_email,omitempty"`
	ScheduledDate       *time.Time           `json:"scheduled_date,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// RequestDetailResponse provides full request info.
type RequestDetailResponse struct {
	ID                   string               `json:"id"`
	Code                 string               `json:"code"`
	PropertyCode         string               `json:"property_code"`
	UnitNumber           string               `json:"unit_number"`
	Title                string               `json:"title"`
	Description          string               `json:"description"`
	Urgency              domain.Urgency       `json:"urgency"`
	Status               domain.RequestStatus `json:"status"`
	SuperintendentEmail  string               `json:"superintendent_email"`
	AssignedWorkerEmail  *string              `json:"assigned_worker_email,omitempty"`
	WorkOrderNumber      *string              `json:"work_order_number,omitempty"`
	ScheduledDate        *time.Time           `json:"scheduled_date,omitempty"`
	CompletionSuccessful *bool                `json:"completion_successful,omitempty"`
	CompletionNotes      string               `json:"completion_notes,omitempty"`
	ClosureNotes         string               `json:"closure_notes,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// RequestHistoryResponse is one audit trail entry.
type RequestHistoryResponse struct {
	ID            string                   `json:"id"`
	ChangedByRole domain.Role              `json:"changed_by_role"`
	ChangedByID   *string                  `json:"changed_by_id,omitempty"`
	ChangeType    domain.RequestChangeType `json:"change_type"`
	OldValue      map[string]any           `json:"old_value,omitempty"`
	NewValue      map[string]any           `json:"new_value,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// TransitionsResponse lists the reachable next statuses.
type TransitionsResponse struct {
	Current domain.RequestStatus   `json:"current"`
	Allowed []domain.RequestStatus `json:"allowed"`
}

// ScheduleResponse reports a booking outcome, including any bookings
// cancelled by an emergency override.
type ScheduleResponse struct {
	Request           RequestDetailResponse      `json:"request"`
	CancelledBookings []CancelledBookingResponse `json:"cancelled_bookings,omitempty"`
}

// CancelledBookingResponse describes one override victim.
type CancelledBookingResponse struct {
	RequestID       string    `json:"request_id"`
	WorkerEmail     string    `json:"worker_email"`
	WorkOrderNumber string    `json:"work_order_number"`
	ScheduledDate   time.Time `json:"scheduled_date"`
}

// RecommendationResponse is one ranked worker candidate.
type RecommendationResponse struct {
	WorkerID            string    `json:"worker_id"`
	WorkerName          string    `json:"worker_name"`
	WorkerEmail         string    `json:"worker_email"`
	Specialization      string    `json:"specialization"`
	Score               int       `json:"score"`
	Confidence          float64   `json:"confidence"`
	Reasoning           string    `json:"reasoning"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
}
