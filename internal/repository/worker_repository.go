package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// WorkerRepository encapsulates worker persistence, including the owned
// assignment collection. It satisfies the scheduling engine's worker store
// boundary.
type WorkerRepository interface {
	Create(ctx context.Context, worker *domain.Worker) error
	Save(ctx context.Context, worker *domain.Worker) error
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
	GetByEmail(ctx context.Context, email string) (*domain.Worker, error)
	ListActiveWorkers(ctx context.Context, specialization *domain.Specialization) ([]*domain.Worker, error)
}

type workerRepository struct {
	db DBTX
}

// NewWorkerRepository instantiates the repository over a pool or transaction.
func NewWorkerRepository(db DBTX) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Create(ctx context.Context, worker *domain.Worker) error {
	const query = `
        INSERT INTO workers (name, email, phone, specialization, active, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		worker.Name,
		worker.Email,
		worker.Phone,
		worker.Specialization,
		worker.Active,
		worker.Notes,
	).Scan(&worker.ID, &worker.CreatedAt, &worker.UpdatedAt)
}

// Save persists the worker row and rewrites its assignment collection. The
// collection is small per worker, so replace-all keeps the remove-then-add
// completion semantics simple and transactional.
func (r *workerRepository) Save(ctx context.Context, worker *domain.Worker) error {
	const query = `
        UPDATE workers SET name=$1, phone=$2, specialization=$3, active=$4, notes=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		worker.Name,
		worker.Phone,
		worker.Specialization,
		worker.Active,
		worker.Notes,
		worker.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM worker_assignments WHERE worker_id=$1`, worker.ID); err != nil {
		return err
	}
	const insert = `
        INSERT INTO worker_assignments (worker_id, work_order_number, scheduled_date, notes, completed, successful, completion_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for _, assignment := range worker.Assignments {
		if _, err := r.db.Exec(ctx, insert,
			worker.ID,
			assignment.WorkOrderNumber,
			assignment.ScheduledDate,
			assignment.Notes,
			assignment.Completed,
			assignment.Successful,
			assignment.CompletionNotes,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	const query = `
        SELECT id, name, email, phone, specialization, active, notes, created_at, updated_at
        FROM workers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *workerRepository) GetByEmail(ctx context.Context, email string) (*domain.Worker, error) {
	const query = `
        SELECT id, name, email, phone, specialization, active, notes, created_at, updated_at
        FROM workers WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *workerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Worker, error) {
	var worker domain.Worker
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&worker.ID,
		&worker.Name,
		&worker.Email,
		&worker.Phone,
		&worker.Specialization,
		&worker.Active,
		&worker.Notes,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.loadAssignments(ctx, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) ListActiveWorkers(ctx context.Context, specialization *domain.Specialization) ([]*domain.Worker, error) {
	query := `
        SELECT id, name, email, phone, specialization, active, notes, created_at, updated_at
        FROM workers WHERE active=TRUE`
	args := []any{}
	if specialization != nil {
		args = append(args, *specialization)
		query += ` AND specialization=$1`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*domain.Worker
	for rows.Next() {
		var worker domain.Worker
		if err := rows.Scan(
			&worker.ID,
			&worker.Name,
			&worker.Email,
			&worker.Phone,
			&worker.Specialization,
			&worker.Active,
			&worker.Notes,
			&worker.CreatedAt,
			&worker.UpdatedAt,
		); err != nil {
			return nil, err
		}
		workers = append(workers, &worker)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, worker := range workers {
		if err := r.loadAssignments(ctx, worker); err != nil {
			return nil, err
		}
	}
	return workers, nil
}

func (r *workerRepository) loadAssignments(ctx context.Context, worker *domain.Worker) error {
	const query = `
        SELECT work_order_number, scheduled_date, notes, completed, successful, completion_notes
        FROM worker_assignments WHERE worker_id=$1`
	rows, err := r.db.Query(ctx, query, worker.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	worker.Assignments = map[string]domain.Assignment{}
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(
			&assignment.WorkOrderNumber,
			&assignment.ScheduledDate,
			&assignment.Notes,
			&assignment.Completed,
			&assignment.Successful,
			&assignment.CompletionNotes,
		); err != nil {
			return err
		}
		worker.Assignments[assignment.WorkOrderNumber] = assignment
	}
	return rows.Err()
}
