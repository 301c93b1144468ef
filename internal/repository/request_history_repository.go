package repository

import (
	"context"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// RequestHistoryRepository stores audit entries. It satisfies the scheduling
// engine's history recorder boundary.
type RequestHistoryRepository interface {
	Record(ctx context.Context, entry *domain.RequestHistory) error
	ListByRequest(ctx context.Context, requestID string, limit, offset int) ([]domain.RequestHistory, error)
}

type requestHistoryRepository struct {
	db DBTX
}

// NewRequestHistoryRepository builds the repository.
func NewRequestHistoryRepository(db DBTX) RequestHistoryRepository {
	return &requestHistoryRepository{db: db}
}

func (r *requestHistoryRepository) Record(ctx context.Context, entry *domain.RequestHistory) error {
	const query = `
        INSERT INTO request_history (request_id, changed_by_role, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.RequestID,
		entry.ChangedByRole,
		entry.ChangedByID,
		entry.ChangeType,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *requestHistoryRepository) ListByRequest(ctx context.Context, requestID string, limit, offset int) ([]domain.RequestHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, request_id, changed_by_role, changed_by_id, change_type, old_value, new_value, created_at
        FROM request_history WHERE request_id=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, requestID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RequestHistory
	for rows.Next() {
		var entry domain.RequestHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.ChangedByRole,
			&entry.ChangedByID,
			&entry.ChangeType,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
