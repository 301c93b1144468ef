package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/events"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// RequestStore is the request persistence boundary the executor needs.
type RequestStore interface {
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	Save(ctx context.Context, request *domain.Request) error
	ListActiveBookingsForUnit(ctx context.Context, propertyCode, unitNumber string, date time.Time) ([]domain.ExistingBooking, error)
}

// WorkerStore is the worker persistence boundary the executor needs.
type WorkerStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Worker, error)
	Save(ctx context.Context, worker *domain.Worker) error
	ListActiveWorkers(ctx context.Context, specialization *domain.Specialization) ([]*domain.Worker, error)
}

// HistoryRecorder persists audit entries. Optional; a nil recorder disables
// history.
type HistoryRecorder interface {
	Record(ctx context.Context, entry *domain.RequestHistory) error
}

// Executor runs a single request-status transition: policy validation, role
// authorization, the status-specific side effect, and event emission. The
// stores handed to it must share one transactional scope when the caller
// needs the emergency-override cascade to commit atomically.
type Executor struct {
	requests   RequestStore
	workers    WorkerStore
	history    HistoryRecorder
	dispatcher events.Dispatcher
}

// NewExecutor constructs an executor over the given stores.
func NewExecutor(requests RequestStore, workers WorkerStore, history HistoryRecorder, dispatcher events.Dispatcher) *Executor {
	return &Executor{requests: requests, workers: workers, history: history, dispatcher: dispatcher}
}

// TransitionInput describes one requested state change.
type TransitionInput struct {
	RequestID string
	Target    domain.RequestStatus
	ActorRole domain.Role
	ActorID   string
	Comment   string

	// Scheduling data, required when Target is Scheduled.
	WorkerEmail   string
	ScheduledDate *time.Time
}

// TransitionResult reports the applied transition. Decision is set when the
// target was Scheduled; CancelledBookings lists bookings revoked by an
// emergency override.
type TransitionResult struct {
	Request           *domain.Request
	Decision          *Decision
	CancelledBookings []domain.ExistingBooking
}

// Execute validates and applies the transition. Scheduling rejections and
// policy violations come back as typed domain errors; the request is saved
// only when every side effect succeeded.
func (e *Executor) Execute(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	request, err := e.requests.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := ValidateTransition(request.Status, input.Target); err != nil {
		return nil, err
	}
	if err := AuthorizeTransition(input.ActorRole, request.Status, input.Target); err != nil {
		return nil, err
	}

	oldStatus := request.Status
	result := &TransitionResult{Request: request}

	switch input.Target {
	case domain.RequestStatusScheduled:
		decision, cancelled, err := e.scheduleRequest(ctx, request, input)
		if err != nil {
			return nil, err
		}
		result.Decision = decision
		result.CancelledBookings = cancelled
	case domain.RequestStatusDone, domain.RequestStatusFailed:
		if err := e.completeRequest(ctx, request, input); err != nil {
			return nil, err
		}
	case domain.RequestStatusDeclined:
		if strings.TrimSpace(input.Comment) != "" {
			request.ClosureNotes = strings.TrimSpace(input.Comment)
		}
	}

	request.Status = input.Target
	if err := e.requests.Save(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	e.recordHistory(ctx, request.ID, input, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": input.Target, "comment": input.Comment})
	e.publish(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: request.ID,
		Actor:     actorFor(input),
		Payload: events.RequestStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: input.Target,
			Comment:   input.Comment,
		},
	})
	return result, nil
}

// scheduleRequest books the worker onto the unit, running the conflict
// resolver first and executing the emergency-override plan when the resolver
// produced one.
func (e *Executor) scheduleRequest(ctx context.Context, request *domain.Request, input TransitionInput) (*Decision, []domain.ExistingBooking, error) {
	if input.WorkerEmail == "" || input.ScheduledDate == nil {
		return nil, nil, apperrors.NewMissingRequiredData("worker email and scheduled date are required to schedule",
			map[string]any{"request_id": request.ID})
	}

	worker, err := e.workers.GetByEmail(ctx, input.WorkerEmail)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	required := domain.InferRequiredSpecialization(request.Title, request.Description)
	existing, err := e.requests.ListActiveBookingsForUnit(ctx, request.PropertyCode, request.UnitNumber, *input.ScheduledDate)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	proposal := BookingProposal{
		RequestID:              request.ID,
		PropertyCode:           request.PropertyCode,
		UnitNumber:             request.UnitNumber,
		ScheduledDate:          *input.ScheduledDate,
		WorkerEmail:            worker.Email,
		WorkerSpecialization:   worker.Specialization,
		RequiredSpecialization: required,
		Emergency:              request.Urgency.IsEmergency(),
	}
	decision := ResolveUnitConflicts(proposal, existing)
	if !decision.Accepted {
		return &decision, nil, rejectionError(decision)
	}

	var cancelled []domain.ExistingBooking
	for _, candidate := range decision.CancelCandidates {
		if err := e.cancelBooking(ctx, candidate, request.ID, input); err != nil {
			return &decision, nil, err
		}
		cancelled = append(cancelled, candidate)
	}

	workOrderNumber := generateWorkOrderNumber()
	assign := worker.Assign
	if proposal.Emergency {
		assign = worker.AssignEmergency
	}
	if err := assign(workOrderNumber, *input.ScheduledDate, request.Code+": "+request.Title); err != nil {
		return &decision, nil, err
	}
	if err := e.workers.Save(ctx, worker); err != nil {
		return &decision, nil, apperrors.MapError(err)
	}

	request.ApplySchedule(worker.Email, workOrderNumber, *input.ScheduledDate)

	e.recordHistory(ctx, request.ID, input, domain.ChangeTypeAssignment,
		map[string]any{"assigned_worker": nil},
		map[string]any{"assigned_worker": worker.Email, "work_order_number": workOrderNumber})
	e.publish(ctx, events.Event{
		Type:      events.EventWorkerAssigned,
		RequestID: request.ID,
		Actor:     actorFor(input),
		Payload: events.WorkerAssignedPayload{
			WorkerEmail:     worker.Email,
			WorkOrderNumber: workOrderNumber,
			ScheduledDate:   *input.ScheduledDate,
		},
	})
	return &decision, cancelled, nil
}

// cancelBooking executes one marked cancellation of the override plan: the
// revoked request is driven back to Submitted (not Failed) so it re-enters
// the assignment queue, with the mandatory audit trail written to its
// closure notes before the assignment fields are cleared.
func (e *Executor) cancelBooking(ctx context.Context, booking domain.ExistingBooking, overridingRequestID string, input TransitionInput) error {
	victim, err := e.requests.GetByID(ctx, booking.RequestID)
	if err != nil {
		return apperrors.MapError(err)
	}
	incumbent, err := e.workers.GetByEmail(ctx, booking.WorkerEmail)
	if err != nil {
		return apperrors.MapError(err)
	}
	if _, err := incumbent.Revoke(booking.WorkOrderNumber); err != nil {
		return err
	}
	if err := e.workers.Save(ctx, incumbent); err != nil {
		return apperrors.MapError(err)
	}

	trail := OverrideTrail(booking)
	oldStatus := victim.Status
	victim.ClearAssignment(trail)
	victim.Status = domain.RequestStatusSubmitted
	if err := e.requests.Save(ctx, victim); err != nil {
		return apperrors.MapError(err)
	}

	e.recordHistory(ctx, victim.ID, input, domain.ChangeTypeOverrideCancellation,
		map[string]any{
			"status":            oldStatus,
			"assigned_worker":   booking.WorkerEmail,
			"work_order_number": booking.WorkOrderNumber,
			"scheduled_date":    booking.ScheduledDate,
		},
		map[string]any{
			"status":        domain.RequestStatusSubmitted,
			"justification": trail,
		})
	e.publish(ctx, events.Event{
		Type:      events.EventBookingCancelled,
		RequestID: victim.ID,
		Actor:     actorFor(input),
		Payload: events.BookingCancelledPayload{
			WorkerEmail:         booking.WorkerEmail,
			WorkOrderNumber:     booking.WorkOrderNumber,
			OriginalDate:        booking.ScheduledDate,
			OverridingRequestID: overridingRequestID,
			Justification:       trail,
		},
	})
	return nil
}

// completeRequest closes out the worker's assignment. The completion outcome
// follows the target status: Done succeeds, Failed does not.
func (e *Executor) completeRequest(ctx context.Context, request *domain.Request, input TransitionInput) error {
	if !request.HasSchedulingData() {
		return apperrors.NewMissingRequiredData("request has no scheduling data to complete",
			map[string]any{"request_id": request.ID})
	}
	worker, err := e.workers.GetByEmail(ctx, *request.AssignedWorkerEmail)
	if err != nil {
		return apperrors.MapError(err)
	}
	successful := input.Target == domain.RequestStatusDone
	if err := worker.Complete(*request.WorkOrderNumber, successful, input.Comment); err != nil {
		return err
	}
	if err := e.workers.Save(ctx, worker); err != nil {
		return apperrors.MapError(err)
	}

	request.CompletionSuccessful = &successful
	request.CompletionNotes = input.Comment

	e.publish(ctx, events.Event{
		Type:      events.EventAssignmentCompleted,
		RequestID: request.ID,
		Actor:     actorFor(input),
		Payload: events.AssignmentCompletedPayload{
			WorkerEmail:     worker.Email,
			WorkOrderNumber: *request.WorkOrderNumber,
			Successful:      successful,
		},
	})
	return nil
}

// rejectionError converts a resolver rejection into the typed error surfaced
// to callers, carrying the conflicting bookings so a UI can offer
// alternatives.
func rejectionError(decision Decision) error {
	conflicts := make([]map[string]any, 0, len(decision.ConflictingBookings))
	for _, booking := range decision.ConflictingBookings {
		conflicts = append(conflicts, map[string]any{
			"request_id":        booking.RequestID,
			"worker_email":      booking.WorkerEmail,
			"work_order_number": booking.WorkOrderNumber,
			"scheduled_date":    booking.ScheduledDate,
			"emergency":         booking.Emergency,
		})
	}
	return apperrors.NewDomainError(string(decision.Reason), decision.Message, 409,
		map[string]any{"conflicts": conflicts})
}

func (e *Executor) recordHistory(ctx context.Context, requestID string, input TransitionInput, changeType domain.RequestChangeType, oldValue, newValue map[string]any) {
	if e.history == nil {
		return
	}
	actorID := input.ActorID
	_ = e.history.Record(ctx, &domain.RequestHistory{
		RequestID:     requestID,
		ChangedByRole: input.ActorRole,
		ChangedByID:   &actorID,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	})
}

func (e *Executor) publish(ctx context.Context, event events.Event) {
	if e.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = e.dispatcher.Publish(ctx, event)
}

func actorFor(input TransitionInput) events.Actor {
	actorID := input.ActorID
	return events.Actor{Role: input.ActorRole, AccountID: &actorID}
}

func generateWorkOrderNumber() string {
	return "WO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
