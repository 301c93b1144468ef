package scheduling

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/events"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

type fakeRequestStore struct {
	requests map[string]*domain.Request
	bookings []domain.ExistingBooking
}

func (s *fakeRequestStore) GetByID(_ context.Context, id string) (*domain.Request, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return request, nil
}

func (s *fakeRequestStore) Save(_ context.Context, request *domain.Request) error {
	s.requests[request.ID] = request
	return nil
}

func (s *fakeRequestStore) ListActiveBookingsForUnit(_ context.Context, _, _ string, _ time.Time) ([]domain.ExistingBooking, error) {
	return s.bookings, nil
}

type fakeWorkerStore struct {
	workers map[string]*domain.Worker
}

func (s *fakeWorkerStore) GetByEmail(_ context.Context, email string) (*domain.Worker, error) {
	worker, ok := s.workers[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return worker, nil
}

func (s *fakeWorkerStore) Save(_ context.Context, worker *domain.Worker) error {
	s.workers[worker.Email] = worker
	return nil
}

func (s *fakeWorkerStore) ListActiveWorkers(_ context.Context, _ *domain.Specialization) ([]*domain.Worker, error) {
	var out []*domain.Worker
	for _, worker := range s.workers {
		if worker.Active {
			out = append(out, worker)
		}
	}
	return out, nil
}

type fakeHistory struct {
	entries []*domain.RequestHistory
}

func (h *fakeHistory) Record(_ context.Context, entry *domain.RequestHistory) error {
	h.entries = append(h.entries, entry)
	return nil
}

func (h *fakeHistory) ofType(changeType domain.RequestChangeType) []*domain.RequestHistory {
	var out []*domain.RequestHistory
	for _, entry := range h.entries {
		if entry.ChangeType == changeType {
			out = append(out, entry)
		}
	}
	return out
}

type executorFixture struct {
	requests *fakeRequestStore
	workers  *fakeWorkerStore
	history  *fakeHistory
	events   map[events.EventType][]events.Event
	executor *Executor
}

func newExecutorFixture() *executorFixture {
	f := &executorFixture{
		requests: &fakeRequestStore{requests: make(map[string]*domain.Request)},
		workers:  &fakeWorkerStore{workers: make(map[string]*domain.Worker)},
		history:  &fakeHistory{},
		events:   make(map[events.EventType][]events.Event),
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventRequestStatusChanged,
		events.EventWorkerAssigned,
		events.EventAssignmentCompleted,
		events.EventBookingCancelled,
	} {
		et := eventType
		dispatcher.Subscribe(et, func(_ context.Context, event events.Event) error {
			f.events[et] = append(f.events[et], event)
			return nil
		})
	}
	f.executor = NewExecutor(f.requests, f.workers, f.history, dispatcher)
	return f
}

func (f *executorFixture) addRequest(request *domain.Request) {
	f.requests.requests[request.ID] = request
}

func (f *executorFixture) addWorker(worker *domain.Worker) {
	f.workers.workers[worker.Email] = worker
}

func execDay(daysAhead, hour int) time.Time {
	day := time.Now().AddDate(0, 0, daysAhead)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

func submittedRequest(id string, urgency domain.Urgency) *domain.Request {
	return &domain.Request{
		ID:           id,
		Code:         "MAPLE-101-0001",
		Title:        "Leaking pipe under the sink",
		Description:  "steady drip, cabinet floor is soaked",
		Urgency:      urgency,
		Status:       domain.RequestStatusSubmitted,
		TenantID:     "tenant-1",
		PropertyCode: "MAPLE",
		UnitNumber:   "101",
	}
}

func TestExecuteSubmit(t *testing.T) {
	f := newExecutorFixture()
	request := submittedRequest("req-1", domain.UrgencyNormal)
	request.Status = domain.RequestStatusDraft
	f.addRequest(request)

	result, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "req-1",
		Target:    domain.RequestStatusSubmitted,
		ActorRole: domain.RoleTenant,
		ActorID:   "tenant-1",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusSubmitted, result.Request.Status)
	assert.Nil(t, result.Decision)
	require.Len(t, f.history.ofType(domain.ChangeTypeStatus), 1)
	require.Len(t, f.events[events.EventRequestStatusChanged], 1)
	payload := f.events[events.EventRequestStatusChanged][0].Payload.(events.RequestStatusChangedPayload)
	assert.Equal(t, domain.RequestStatusDraft, payload.OldStatus)
	assert.Equal(t, domain.RequestStatusSubmitted, payload.NewStatus)
}

func TestExecuteUnknownRequest(t *testing.T) {
	f := newExecutorFixture()
	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "missing",
		Target:    domain.RequestStatusSubmitted,
		ActorRole: domain.RoleTenant,
	})
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}

func TestExecuteInvalidTransition(t *testing.T) {
	f := newExecutorFixture()
	f.addRequest(submittedRequest("req-1", domain.UrgencyNormal))

	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "req-1",
		Target:    domain.RequestStatusSubmitted,
		ActorRole: domain.RoleTenant,
	})
	assert.Equal(t, "INVALID_STATUS_TRANSITION", apperrors.CodeOf(err))
	assert.Empty(t, f.history.entries)
	assert.Empty(t, f.events[events.EventRequestStatusChanged])
}

func TestExecuteUnauthorizedRole(t *testing.T) {
	f := newExecutorFixture()
	f.addRequest(submittedRequest("req-1", domain.UrgencyNormal))

	date := execDay(2, 9)
	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID:     "req-1",
		Target:        domain.RequestStatusScheduled,
		ActorRole:     domain.RoleTenant,
		WorkerEmail:   "pat@example.com",
		ScheduledDate: &date,
	})
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", apperrors.CodeOf(err))
}

func TestScheduleMissingData(t *testing.T) {
	f := newExecutorFixture()
	f.addRequest(submittedRequest("req-1", domain.UrgencyNormal))

	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "req-1",
		Target:    domain.RequestStatusScheduled,
		ActorRole: domain.RolePropertySuperintendent,
	})
	assert.Equal(t, "MISSING_REQUIRED_DATA", apperrors.CodeOf(err))
}

func TestScheduleUnknownWorker(t *testing.T) {
	f := newExecutorFixture()
	f.addRequest(submittedRequest("req-1", domain.UrgencyNormal))

	date := execDay(2, 9)
	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID:     "req-1",
		Target:        domain.RequestStatusScheduled,
		ActorRole:     domain.RolePropertySuperintendent,
		WorkerEmail:   "nobody@example.com",
		ScheduledDate: &date,
	})
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}

func TestScheduleHappyPath(t *testing.T) {
	f := newExecutorFixture()
	f.addRequest(submittedRequest("req-1", domain.UrgencyNormal))
	f.addWorker(domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing))

	date := execDay(2, 9)
	result, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID:     "req-1",
		Target:        domain.RequestStatusScheduled,
		ActorRole:     domain.RolePropertySuperintendent,
		ActorID:       "super-1",
		WorkerEmail:   "pat@example.com",
		ScheduledDate: &date,
	})
	require.NoError(t, err)

	request := result.Request
	assert.Equal(t, domain.RequestStatusScheduled, request.Status)
	require.True(t, request.HasSchedulingData())
	assert.Equal(t, "pat@example.com", *request.AssignedWorkerEmail)
	assert.True(t, strings.HasPrefix(*request.WorkOrderNumber, "WO-"))
	assert.True(t, request.ScheduledDate.Equal(date))

	require.NotNil(t, result.Decision)
	assert.True(t, result.Decision.Accepted)
	assert.Empty(t, result.CancelledBookings)

	worker := f.workers.workers["pat@example.com"]
	assert.Equal(t, 1, worker.ActiveAssignmentCount())

	require.Len(t, f.events[events.EventWorkerAssigned], 1)
	assert.Len(t, f.history.ofType(domain.ChangeTypeAssignment), 1)
	assert.Len(t, f.history.ofType(domain.ChangeTypeStatus), 1)
}

// A worker already at the normal daily cap on other units can still take an
// emergency booking that day; a normal booking is refused.
func TestScheduleEmergencyRelaxedCapacity(t *testing.T) {
	f := newExecutorFixture()
	date := execDay(2, 8)

	worker := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	require.NoError(t, worker.Assign("WO-A", execDay(2, 13), "OAK-201-0003: Clogged drain"))
	require.NoError(t, worker.Assign("WO-B", execDay(2, 18), "OAK-305-0004: Running toilet"))
	f.addWorker(worker)

	f.addRequest(submittedRequest("req-normal", domain.UrgencyNormal))
	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID:     "req-normal",
		Target:        domain.RequestStatusScheduled,
		ActorRole:     domain.RolePropertySuperintendent,
		WorkerEmail:   "pat@example.com",
		ScheduledDate: &date,
	})
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))

	f.addRequest(submittedRequest("req-em", domain.UrgencyEmergency))
	result, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID:     "req-em",
		Target:        domain.RequestStatusScheduled,
		ActorRole:     domain.RolePropertySuperintendent,
		WorkerEmail:   "pat@example.com",
		ScheduledDate: &date,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusScheduled, result.Request.Status)
	assert.Equal(t, 3, worker.ActiveAssignmentCount())
}

func TestScheduleUnitConflict(t *testing.T) {
	f := newExecutorFixture()
	f.addRequest(submittedRequest("req-1", domain.UrgencyNormal))
	f.addWorker(domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing))

	date := execDay(2, 9)
	f.requests.bookings = []domain.ExistingBooking{{
		RequestID:            "req-old",
		PropertyCode:         "MAPLE",
		UnitNumber:           "101",
		WorkerEmail:          "old@example.com",
		WorkerSpecialization: domain.SpecializationPlumbing,
		WorkOrderNumber:      "WO-OLD",
		ScheduledDate:        date,
		Active:               true,
	}}

	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID:     "req-1",
		Target:        domain.RequestStatusScheduled,
		ActorRole:     domain.RolePropertySuperintendent,
		WorkerEmail:   "pat@example.com",
		ScheduledDate: &date,
	})
	assert.Equal(t, "UNIT_CONFLICT", apperrors.CodeOf(err))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	conflicts := domainErr.Details["conflicts"].([]map[string]any)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "req-old", conflicts[0]["request_id"])
}

func TestScheduleEmergencyOverrideCascade(t *testing.T) {
	f := newExecutorFixture()
	date := execDay(3, 9)

	emergency := submittedRequest("req-em", domain.UrgencyEmergency)
	emergency.Code = "MAPLE-101-0002"
	f.addRequest(emergency)

	victim := submittedRequest("req-old", domain.UrgencyNormal)
	victim.Status = domain.RequestStatusScheduled
	victim.ApplySchedule("old@example.com", "WO-OLD", date)
	f.addRequest(victim)

	incumbent := domain.NewWorker("Old", "old@example.com", "", domain.SpecializationPlumbing)
	require.NoError(t, incumbent.Assign("WO-OLD", date, "MAPLE-101-0001: Leaking pipe under the sink"))
	f.addWorker(incumbent)
	f.addWorker(domain.NewWorker("New", "new@example.com", "", domain.SpecializationPlumbing))

	f.requests.bookings = []domain.ExistingBooking{{
		RequestID:            "req-old",
		PropertyCode:         "MAPLE",
		UnitNumber:           "101",
		WorkerEmail:          "old@example.com",
		WorkerSpecialization: domain.SpecializationPlumbing,
		WorkOrderNumber:      "WO-OLD",
		ScheduledDate:        date,
		Active:               true,
	}}

	result, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID:     "req-em",
		Target:        domain.RequestStatusScheduled,
		ActorRole:     domain.RolePropertySuperintendent,
		ActorID:       "super-1",
		WorkerEmail:   "new@example.com",
		ScheduledDate: &date,
	})
	require.NoError(t, err)

	require.Len(t, result.CancelledBookings, 1)
	assert.Equal(t, "req-old", result.CancelledBookings[0].RequestID)
	assert.Equal(t, domain.RequestStatusScheduled, result.Request.Status)

	// The revoked request re-enters the queue with a mandatory audit trail.
	assert.Equal(t, domain.RequestStatusSubmitted, victim.Status)
	assert.False(t, victim.HasSchedulingData())
	assert.Contains(t, victim.ClosureNotes, "emergency override")
	assert.Contains(t, victim.ClosureNotes, "old@example.com")
	assert.Contains(t, victim.ClosureNotes, "WO-OLD")

	assert.Equal(t, 0, incumbent.ActiveAssignmentCount())
	assert.Equal(t, 1, f.workers.workers["new@example.com"].ActiveAssignmentCount())

	require.Len(t, f.history.ofType(domain.ChangeTypeOverrideCancellation), 1)
	require.Len(t, f.events[events.EventBookingCancelled], 1)
	payload := f.events[events.EventBookingCancelled][0].Payload.(events.BookingCancelledPayload)
	assert.Equal(t, "req-em", payload.OverridingRequestID)
	assert.Equal(t, "WO-OLD", payload.WorkOrderNumber)
}

func TestCompleteDone(t *testing.T) {
	f := newExecutorFixture()
	date := execDay(2, 9)

	request := submittedRequest("req-1", domain.UrgencyNormal)
	request.Status = domain.RequestStatusScheduled
	request.ApplySchedule("pat@example.com", "WO-1", date)
	f.addRequest(request)

	worker := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	require.NoError(t, worker.Assign("WO-1", date, "MAPLE-101-0001: Leaking pipe under the sink"))
	f.addWorker(worker)

	result, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "req-1",
		Target:    domain.RequestStatusDone,
		ActorRole: domain.RoleWorker,
		ActorID:   "pat@example.com",
		Comment:   "replaced the trap, no more drip",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusDone, result.Request.Status)
	require.NotNil(t, result.Request.CompletionSuccessful)
	assert.True(t, *result.Request.CompletionSuccessful)
	assert.Equal(t, "replaced the trap, no more drip", result.Request.CompletionNotes)
	assert.Equal(t, 0, worker.ActiveAssignmentCount())

	require.Len(t, f.events[events.EventAssignmentCompleted], 1)
	payload := f.events[events.EventAssignmentCompleted][0].Payload.(events.AssignmentCompletedPayload)
	assert.True(t, payload.Successful)
}

func TestCompleteFailed(t *testing.T) {
	f := newExecutorFixture()
	date := execDay(2, 9)

	request := submittedRequest("req-1", domain.UrgencyNormal)
	request.Status = domain.RequestStatusScheduled
	request.ApplySchedule("pat@example.com", "WO-1", date)
	f.addRequest(request)

	worker := domain.NewWorker("Pat", "pat@example.com", "", domain.SpecializationPlumbing)
	require.NoError(t, worker.Assign("WO-1", date, "MAPLE-101-0001: Leaking pipe under the sink"))
	f.addWorker(worker)

	result, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "req-1",
		Target:    domain.RequestStatusFailed,
		ActorRole: domain.RoleWorker,
		Comment:   "needs a part on back order",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusFailed, result.Request.Status)
	require.NotNil(t, result.Request.CompletionSuccessful)
	assert.False(t, *result.Request.CompletionSuccessful)
}

func TestCompleteWithoutSchedulingData(t *testing.T) {
	f := newExecutorFixture()
	request := submittedRequest("req-1", domain.UrgencyNormal)
	request.Status = domain.RequestStatusScheduled
	f.addRequest(request)

	_, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "req-1",
		Target:    domain.RequestStatusDone,
		ActorRole: domain.RoleWorker,
	})
	assert.Equal(t, "MISSING_REQUIRED_DATA", apperrors.CodeOf(err))
}

func TestDeclineRecordsClosureNotes(t *testing.T) {
	f := newExecutorFixture()
	f.addRequest(submittedRequest("req-1", domain.UrgencyNormal))

	result, err := f.executor.Execute(context.Background(), TransitionInput{
		RequestID: "req-1",
		Target:    domain.RequestStatusDeclined,
		ActorRole: domain.RolePropertySuperintendent,
		Comment:   "  cosmetic issue, handled during turnover  ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusDeclined, result.Request.Status)
	assert.Equal(t, "cosmetic issue, handled during turnover", result.Request.ClosureNotes)
}
