package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// RequestFilter captures listing parameters.
type RequestFilter struct {
	TenantID     *string
	PropertyCode *string
	UnitNumber   *string
	WorkerEmail  *string
	Statuses     []domain.RequestStatus
	Urgencies    []domain.Urgency
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// RequestRepository encapsulates request persistence. It satisfies the
// scheduling engine's request store boundary.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.Request) error
	Save(ctx context.Context, request *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	GetByCode(ctx context.Context, code string) (*domain.Request, error)
	ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error)
	ListActiveBookingsForUnit(ctx context.Context, propertyCode, unitNumber string, date time.Time) ([]domain.ExistingBooking, error)
	NextSequenceForUnit(ctx context.Context, propertyCode, unitNumber string) (int, error)
}

type requestRepository struct {
	db DBTX
}

// NewRequestRepository instantiates the repository over a pool or
// transaction.
func NewRequestRepository(db DBTX) RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `id, code, title, description, urgency, status, tenant_id,
               property_code, unit_number, superintendent_email, assigned_worker_email,
               work_order_number, scheduled_date, completion_successful, completion_notes,
               closure_notes, created_at, updated_at`

func (r *requestRepository) Create(ctx context.Context, request *domain.Request) error {
	const query = `
        INSERT INTO requests (code, title, description, urgency, status, tenant_id,
            property_code, unit_number, superintendent_email, completion_notes, closure_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		request.Code,
		request.Title,
		request.Description,
		request.Urgency,
		request.Status,
		request.TenantID,
		request.PropertyCode,
		request.UnitNumber,
		request.SuperintendentEmail,
		request.CompletionNotes,
		request.ClosureNotes,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) Save(ctx context.Context, request *domain.Request) error {
	const query = `
        UPDATE requests SET title=$1, description=$2, urgency=$3, status=$4,
            assigned_worker_email=$5, work_order_number=$6, scheduled_date=$7,
            completion_successful=$8, completion_notes=$9, closure_notes=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.db.Exec(ctx, query,
		request.Title,
		request.Description,
		request.Urgency,
		request.Status,
		request.AssignedWorkerEmail,
		request.WorkOrderNumber,
		request.ScheduledDate,
		request.CompletionSuccessful,
		request.CompletionNotes,
		request.ClosureNotes,
		request.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	return r.fetchSingle(ctx, `SELECT `+requestColumns+` FROM requests WHERE id=$1`, id)
}

func (r *requestRepository) GetByCode(ctx context.Context, code string) (*domain.Request, error) {
	return r.fetchSingle(ctx, `SELECT `+requestColumns+` FROM requests WHERE code=$1`, code)
}

func (r *requestRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Request, error) {
	var request domain.Request
	if err := scanRequest(r.db.QueryRow(ctx, query, arg), &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListWithFilter(ctx context.Context, filter RequestFilter) ([]domain.Request, error) {
	base := `SELECT ` + requestColumns + ` FROM requests`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		clauses = append(clauses, fmt.Sprintf("tenant_id=$%d", len(args)))
	}
	if filter.PropertyCode != nil {
		args = append(args, *filter.PropertyCode)
		clauses = append(clauses, fmt.Sprintf("property_code=$%d", len(args)))
	}
	if filter.UnitNumber != nil {
		args = append(args, *filter.UnitNumber)
		clauses = append(clauses, fmt.Sprintf("unit_number=$%d", len(args)))
	}
	if filter.WorkerEmail != nil {
		args = append(args, *filter.WorkerEmail)
		clauses = append(clauses, fmt.Sprintf("assigned_worker_email=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, urgency := range filter.Urgencies {
			args = append(args, urgency)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Request
	for rows.Next() {
		var request domain.Request
		if err := scanRequest(rows, &request); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}

// ListActiveBookingsForUnit joins requests with their assigned workers to
// produce the booking snapshot the conflict resolver reasons over.
func (r *requestRepository) ListActiveBookingsForUnit(ctx context.Context, propertyCode, unitNumber string, date time.Time) ([]domain.ExistingBooking, error) {
	const query = `
        SELECT r.id, r.property_code, r.unit_number, r.assigned_worker_email,
               COALESCE(w.specialization, 'General Maintenance'), r.work_order_number,
               r.scheduled_date, r.urgency
        FROM requests r
        LEFT JOIN workers w ON w.email = r.assigned_worker_email
        WHERE r.property_code=$1 AND r.unit_number=$2
          AND r.status IN ('SUBMITTED','SCHEDULED')
          AND r.assigned_worker_email IS NOT NULL
          AND r.scheduled_date::date = $3::date`
	rows, err := r.db.Query(ctx, query, propertyCode, unitNumber, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.ExistingBooking
	for rows.Next() {
		var booking domain.ExistingBooking
		var urgency domain.Urgency
		if err := rows.Scan(
			&booking.RequestID,
			&booking.PropertyCode,
			&booking.UnitNumber,
			&booking.WorkerEmail,
			&booking.WorkerSpecialization,
			&booking.WorkOrderNumber,
			&booking.ScheduledDate,
			&urgency,
		); err != nil {
			return nil, err
		}
		booking.Active = true
		booking.Emergency = urgency.IsEmergency()
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *requestRepository) NextSequenceForUnit(ctx context.Context, propertyCode, unitNumber string) (int, error) {
	const query = `SELECT COUNT(*) + 1 FROM requests WHERE property_code=$1 AND unit_number=$2`
	var seq int
	if err := r.db.QueryRow(ctx, query, propertyCode, unitNumber).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner, request *domain.Request) error {
	return row.Scan(
		&request.ID,
		&request.Code,
		&request.Title,
		&request.Description,
		&request.Urgency,
		&request.Status,
		&request.TenantID,
		&request.PropertyCode,
		&request.UnitNumber,
		&request.SuperintendentEmail,
		&request.AssignedWorkerEmail,
		&request.WorkOrderNumber,
		&request.ScheduledDate,
		&request.CompletionSuccessful,
		&request.CompletionNotes,
		&request.ClosureNotes,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
}
