package domain

import "time"

// RequestStatus enumerates lifecycle states for maintenance requests.
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "DRAFT"
	RequestStatusSubmitted RequestStatus = "SUBMITTED"
	RequestStatusScheduled RequestStatus = "SCHEDULED"
	RequestStatusDone      RequestStatus = "DONE"
	RequestStatusFailed    RequestStatus = "FAILED"
	RequestStatusDeclined  RequestStatus = "DECLINED"
	RequestStatusClosed    RequestStatus = "CLOSED"
)

// Urgency enumerates how quickly a request must be handled.
type Urgency string

const (
	UrgencyEmergency Urgency = "EMERGENCY"
	UrgencyCritical  Urgency = "CRITICAL"
	UrgencyHigh      Urgency = "HIGH"
	UrgencyNormal    Urgency = "NORMAL"
	UrgencyLow       Urgency = "LOW"
)

// Rank orders urgencies; a lower value is more urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyEmergency:
		return 0
	case UrgencyCritical:
		return 1
	case UrgencyHigh:
		return 2
	case UrgencyNormal:
		return 3
	case UrgencyLow:
		return 4
	default:
		return 5
	}
}

// IsEmergency reports whether the urgency qualifies for the emergency
// scheduling path (Emergency and Critical do).
func (u Urgency) IsEmergency() bool {
	return u == UrgencyEmergency || u == UrgencyCritical
}

// Request is the aggregate for tenant maintenance tickets.
type Request struct {
	ID                   string
	Code                 string
	Title                string
	Description          string
	Urgency              Urgency
	Status               RequestStatus
	TenantID             string
	PropertyCode         string
	UnitNumber           string
	SuperintendentEmail  string
	AssignedWorkerEmail  *string
	WorkOrderNumber      *string
	ScheduledDate        *time.Time
	CompletionSuccessful *bool
	CompletionNotes      string
	ClosureNotes         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasSchedulingData reports whether the assignment triple is fully present.
// The three fields are all-or-nothing on a well-formed request.
func (r *Request) HasSchedulingData() bool {
	return r.AssignedWorkerEmail != nil && r.WorkOrderNumber != nil && r.ScheduledDate != nil
}

// ApplySchedule sets the assignment triple.
func (r *Request) ApplySchedule(workerEmail, workOrderNumber string, scheduledDate time.Time) {
	r.AssignedWorkerEmail = &workerEmail
	r.WorkOrderNumber = &workOrderNumber
	r.ScheduledDate = &scheduledDate
}

// ClearAssignment removes the assignment triple after recording a
// human-readable trail in the closure notes. Used only by the emergency
// override cascade.
func (r *Request) ClearAssignment(trail string) {
	if trail != "" {
		if r.ClosureNotes != "" {
			r.ClosureNotes += "\n"
		}
		r.ClosureNotes += trail
	}
	r.AssignedWorkerEmail = nil
	r.WorkOrderNumber = nil
	r.ScheduledDate = nil
}
