package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// PropertyRepository manages properties and their units.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	Update(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	GetByCode(ctx context.Context, code string) (*domain.Property, error)
	List(ctx context.Context, limit, offset int) ([]domain.Property, error)
	CreateUnit(ctx context.Context, unit *domain.Unit) error
	GetUnit(ctx context.Context, propertyID, number string) (*domain.Unit, error)
	ListUnits(ctx context.Context, propertyID string) ([]domain.Unit, error)
}

type propertyRepository struct {
	db DBTX
}

// NewPropertyRepository builds the repository.
func NewPropertyRepository(db DBTX) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	const query = `
        INSERT INTO properties (code, name, address, superintendent_email, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		property.Code,
		property.Name,
		property.Address,
		property.SuperintendentEmail,
		property.IsActive,
	).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt)
}

func (r *propertyRepository) Update(ctx context.Context, property *domain.Property) error {
	const query = `
        UPDATE properties SET name=$1, address=$2, superintendent_email=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		property.Name,
		property.Address,
		property.SuperintendentEmail,
		property.IsActive,
		property.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	const query = `
        SELECT id, code, name, address, superintendent_email, is_active, created_at, updated_at
        FROM properties WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *propertyRepository) GetByCode(ctx context.Context, code string) (*domain.Property, error) {
	const query = `
        SELECT id, code, name, address, superintendent_email, is_active, created_at, updated_at
        FROM properties WHERE code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *propertyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Property, error) {
	var property domain.Property
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&property.ID,
		&property.Code,
		&property.Name,
		&property.Address,
		&property.SuperintendentEmail,
		&property.IsActive,
		&property.CreatedAt,
		&property.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) List(ctx context.Context, limit, offset int) ([]domain.Property, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, code, name, address, superintendent_email, is_active, created_at, updated_at
        FROM properties ORDER BY code ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Property
	for rows.Next() {
		var property domain.Property
		if err := rows.Scan(
			&property.ID,
			&property.Code,
			&property.Name,
			&property.Address,
			&property.SuperintendentEmail,
			&property.IsActive,
			&property.CreatedAt,
			&property.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, property)
	}
	return result, rows.Err()
}

func (r *propertyRepository) CreateUnit(ctx context.Context, unit *domain.Unit) error {
	const query = `
        INSERT INTO units (property_id, number, floor, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		unit.PropertyID,
		unit.Number,
		unit.Floor,
		unit.IsActive,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
}

func (r *propertyRepository) GetUnit(ctx context.Context, propertyID, number string) (*domain.Unit, error) {
	const query = `
        SELECT id, property_id, number, floor, is_active, created_at, updated_at
        FROM units WHERE property_id=$1 AND number=$2`
	var unit domain.Unit
	if err := r.db.QueryRow(ctx, query, propertyID, number).Scan(
		&unit.ID,
		&unit.PropertyID,
		&unit.Number,
		&unit.Floor,
		&unit.IsActive,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *propertyRepository) ListUnits(ctx context.Context, propertyID string) ([]domain.Unit, error) {
	const query = `
        SELECT id, property_id, number, floor, is_active, created_at, updated_at
        FROM units WHERE property_id=$1 ORDER BY number ASC`
	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Unit
	for rows.Next() {
		var unit domain.Unit
		if err := rows.Scan(
			&unit.ID,
			&unit.PropertyID,
			&unit.Number,
			&unit.Floor,
			&unit.IsActive,
			&unit.CreatedAt,
			&unit.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, unit)
	}
	return result, rows.Err()
}
