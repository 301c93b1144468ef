package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/repository"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// WorkerService manages the worker roster.
type WorkerService struct {
	workers repository.WorkerRepository
}

// WorkerCreateInput describes a new roster entry.
type WorkerCreateInput struct {
	Name           string
	Email          string
	Phone          string
	Specialization string
	Notes          string
}

// NewWorkerService constructs the service.
func NewWorkerService(workers repository.WorkerRepository) *WorkerService {
	return &WorkerService{workers: workers}
}

// RegisterWorker adds a worker to the roster. Free-form specialization text
// is normalized to a canonical trade; unknown text falls back to General
// Maintenance.
func (s *WorkerService) RegisterWorker(ctx context.Context, input WorkerCreateInput) (*domain.Worker, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if _, err := s.workers.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("worker email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	worker := domain.NewWorker(name, email, strings.TrimSpace(input.Phone), domain.NormalizeSpecialization(input.Specialization))
	worker.Notes = strings.TrimSpace(input.Notes)
	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}

// SetActive toggles whether the worker accepts new assignments. Deactivation
// leaves existing bookings in place; the resolver stops offering the worker.
func (s *WorkerService) SetActive(ctx context.Context, workerEmail string, active bool) (*domain.Worker, error) {
	worker, err := s.getByEmail(ctx, workerEmail)
	if err != nil {
		return nil, err
	}
	if worker.Active == active {
		return worker, nil
	}
	worker.Active = active
	if err := s.workers.Save(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}

// ListWorkers returns active workers, optionally restricted to one trade.
func (s *WorkerService) ListWorkers(ctx context.Context, specialization *string) ([]*domain.Worker, error) {
	var spec *domain.Specialization
	if specialization != nil && strings.TrimSpace(*specialization) != "" {
		normalized := domain.NormalizeSpecialization(*specialization)
		spec = &normalized
	}
	return s.workers.ListActiveWorkers(ctx, spec)
}

// GetWorker fetches a worker by email.
func (s *WorkerService) GetWorker(ctx context.Context, workerEmail string) (*domain.Worker, error) {
	return s.getByEmail(ctx, workerEmail)
}

func (s *WorkerService) getByEmail(ctx context.Context, workerEmail string) (*domain.Worker, error) {
	worker, err := s.workers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(workerEmail)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("worker", map[string]any{"worker_email": workerEmail})
		}
		return nil, err
	}
	return worker, nil
}
