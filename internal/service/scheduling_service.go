package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-scheduler/internal/config"
	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/events"
	"github.com/spec-kit/maintenance-scheduler/internal/observability"
	"github.com/spec-kit/maintenance-scheduler/internal/repository"
	"github.com/spec-kit/maintenance-scheduler/internal/scheduling"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// SchedulingService drives status transitions and recommendations. The
// emergency-override cascade runs inside a single database transaction so a
// rejected override never leaves a half-cancelled booking behind.
type SchedulingService struct {
	pool       *pgxpool.Pool
	requests   repository.RequestRepository
	workers    repository.WorkerRepository
	history    repository.RequestHistoryRepository
	dispatcher events.Dispatcher
	cache      *RecommendationCache
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.SchedulingConfig
}

// SchedulingDependencies bundles collaborators for the scheduling service.
type SchedulingDependencies struct {
	Pool        *pgxpool.Pool
	RequestRepo repository.RequestRepository
	WorkerRepo  repository.WorkerRepository
	HistoryRepo repository.RequestHistoryRepository
	Dispatcher  events.Dispatcher
	Cache       *RecommendationCache
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewSchedulingService constructs the service.
func NewSchedulingService(cfg config.SchedulingConfig, deps SchedulingDependencies) *SchedulingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		pool:       deps.Pool,
		requests:   deps.RequestRepo,
		workers:    deps.WorkerRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// Transition applies a non-scheduling status change: submit, decline, close,
// and the Done/Failed completion pair.
func (s *SchedulingService) Transition(ctx context.Context, actor Actor, requestID string, target domain.RequestStatus, comment string) (*domain.Request, error) {
	executor := scheduling.NewExecutor(s.requests, s.workers, s.history, s.dispatcher)
	result, err := executor.Execute(ctx, scheduling.TransitionInput{
		RequestID: requestID,
		Target:    target,
		ActorRole: actor.Role,
		ActorID:   actor.AccountID,
		Comment:   comment,
	})
	if err != nil {
		return nil, err
	}
	if target == domain.RequestStatusDone || target == domain.RequestStatusFailed {
		s.cache.Invalidate(ctx, requestID)
	}
	return result.Request, nil
}

// CompleteWork marks the scheduled work order finished. A successful visit
// moves the request to Done, an unsuccessful one to Failed so it can be
// rescheduled.
func (s *SchedulingService) CompleteWork(ctx context.Context, actor Actor, requestID string, successful bool, notes string) (*domain.Request, error) {
	target := domain.RequestStatusDone
	if !successful {
		target = domain.RequestStatusFailed
	}
	return s.Transition(ctx, actor, requestID, target, notes)
}

// ScheduleRequest books a worker onto the request for the given date. The
// conflict resolver, any override cancellations, the worker booking and the
// request update all commit atomically.
func (s *SchedulingService) ScheduleRequest(ctx context.Context, actor Actor, requestID, workerEmail string, scheduledDate time.Time) (*scheduling.TransitionResult, error) {
	if s.pool == nil {
		return nil, apperrors.NewInternalError(errors.New("database not configured"))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	executor := scheduling.NewExecutor(
		repository.NewRequestRepository(tx),
		repository.NewWorkerRepository(tx),
		repository.NewRequestHistoryRepository(tx),
		s.dispatcher,
	)
	result, err := executor.Execute(ctx, scheduling.TransitionInput{
		RequestID:     requestID,
		Target:        domain.RequestStatusScheduled,
		ActorRole:     actor.Role,
		ActorID:       actor.AccountID,
		WorkerEmail:   workerEmail,
		ScheduledDate: &scheduledDate,
	})
	if err != nil {
		s.recordDecision("rejected")
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.recordDecision(decisionOutcome(result))
	s.cache.Invalidate(ctx, requestID)
	for _, cancelled := range result.CancelledBookings {
		s.cache.Invalidate(ctx, cancelled.RequestID)
	}
	s.logger.Info("request scheduled",
		zap.String("request_id", requestID),
		zap.String("worker_email", workerEmail),
		zap.Time("scheduled_date", scheduledDate),
		zap.Int("cancelled_bookings", len(result.CancelledBookings)))
	return result, nil
}

// RecommendWorkers ranks active workers for the request. Results are cached
// per request and refreshed whenever bookings change.
func (s *SchedulingService) RecommendWorkers(ctx context.Context, requestID string, topN int) ([]scheduling.Recommendation, error) {
	if recs, ok := s.cache.Get(ctx, requestID); ok {
		return recs, nil
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, err
	}
	candidates, err := s.workers.ListActiveWorkers(ctx, nil)
	if err != nil {
		return nil, err
	}

	if topN <= 0 {
		topN = s.cfg.RecommendationTopN
	}
	recs := scheduling.Recommend(request, candidates, topN)
	s.cache.Set(ctx, requestID, recs)
	return recs, nil
}

// WorkerAvailability summarizes a worker's calendar over the search horizon.
type WorkerAvailability struct {
	Worker               *domain.Worker
	BookedDates          []time.Time
	PartiallyBookedDates []time.Time
	NextAvailableDate    *time.Time
}

// AvailabilityForWorker reports booked and partially booked days from the
// given date through the configured horizon, plus the next fully free day.
func (s *SchedulingService) AvailabilityForWorker(ctx context.Context, workerEmail string, from time.Time, emergency bool) (*WorkerAvailability, error) {
	worker, err := s.workers.GetByEmail(ctx, workerEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("worker", map[string]any{"worker_email": workerEmail})
		}
		return nil, err
	}

	horizon := s.cfg.SearchHorizonDays
	if horizon <= 0 {
		horizon = domain.DefaultSearchHorizonDays
	}
	end := from.AddDate(0, 0, horizon)

	availability := &WorkerAvailability{
		Worker:               worker,
		BookedDates:          worker.BookedDates(from, end, emergency),
		PartiallyBookedDates: worker.PartiallyBookedDates(from, end),
	}
	if next, ok := worker.NextFullyAvailableDate(from, horizon); ok {
		availability.NextAvailableDate = &next
	}
	return availability, nil
}

func (s *SchedulingService) recordDecision(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSchedulingDecision(outcome)
	}
}

func decisionOutcome(result *scheduling.TransitionResult) string {
	if len(result.CancelledBookings) > 0 {
		return "override"
	}
	return "accepted"
}
