package dto

import "time"

// CreateWorkerRequest payload.
type CreateWorkerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
	Notes          string `json:"notes"`
}

// SetWorkerActiveRequest payload.
type SetWorkerActiveRequest struct {
	Active bool `json:"active"`
}

// WorkerResponse describes a roster entry.
type WorkerResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Specialization string    `json:"specialization"`
	Active         bool      `json:"active"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// WorkerAssignmentResponse describes one booking on a worker's calendar.
type WorkerAssignmentResponse struct {
	WorkOrderNumber string    `json:"work_order_number"`
	ScheduledDate   time.Time `json:"scheduled_date"`
	Completed       bool      `json:"completed"`
	Successful      bool      `json:"successful"`
	Notes           string    `json:"notes,omitempty"`
}

// WorkerAvailabilityResponse summarizes a worker's calendar.
type WorkerAvailabilityResponse struct {
	Worker               WorkerResponse `json:"worker"`
	BookedDates          []string       `json:"booked_dates"`
	PartiallyBookedDates []string       `json:"partially_booked_dates"`
	NextAvailableDate    *string        `json:"next_available_date,omitempty"`
}
