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

// PropertyService manages the property and unit registry.
type PropertyService struct {
	properties repository.PropertyRepository
}

// PropertyCreateInput describes a new property.
type PropertyCreateInput struct {
	Code                string
	Name                string
	Address             string
	SuperintendentEmail string
}

// UnitCreateInput describes a new unit within a property.
type UnitCreateInput struct {
	Number string
	Floor  int
}

// NewPropertyService constructs the service.
func NewPropertyService(properties repository.PropertyRepository) *PropertyService {
	return &PropertyService{properties: properties}
}

// CreateProperty registers a property. Codes are upper-cased and must be
// unique; they prefix every request code for the property.
func (s *PropertyService) CreateProperty(ctx context.Context, input PropertyCreateInput) (*domain.Property, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, apperrors.NewValidationError("property code is required", nil)
	}
	if _, err := s.properties.GetByCode(ctx, code); err == nil {
		return nil, apperrors.NewConflict("property code already exists", map[string]any{"property_code": code})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	property := &domain.Property{
		Code:                code,
		Name:                strings.TrimSpace(input.Name),
		Address:             strings.TrimSpace(input.Address),
		SuperintendentEmail: strings.ToLower(strings.TrimSpace(input.SuperintendentEmail)),
		IsActive:            true,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// UpdateProperty applies mutable fields.
func (s *PropertyService) UpdateProperty(ctx context.Context, code string, name, address, superintendentEmail *string, isActive *bool) (*domain.Property, error) {
	property, err := s.GetProperty(ctx, code)
	if err != nil {
		return nil, err
	}
	if name != nil {
		property.Name = strings.TrimSpace(*name)
	}
	if address != nil {
		property.Address = strings.TrimSpace(*address)
	}
	if superintendentEmail != nil {
		property.SuperintendentEmail = strings.ToLower(strings.TrimSpace(*superintendentEmail))
	}
	if isActive != nil {
		property.IsActive = *isActive
	}
	if err := s.properties.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// GetProperty fetches a property by code.
func (s *PropertyService) GetProperty(ctx context.Context, code string) (*domain.Property, error) {
	property, err := s.properties.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_code": code})
		}
		return nil, err
	}
	return property, nil
}

// ListProperties returns paginated properties.
func (s *PropertyService) ListProperties(ctx context.Context, limit, offset int) ([]domain.Property, error) {
	return s.properties.List(ctx, limit, offset)
}

// AddUnit registers a unit under the property.
func (s *PropertyService) AddUnit(ctx context.Context, propertyCode string, input UnitCreateInput) (*domain.Unit, error) {
	property, err := s.GetProperty(ctx, propertyCode)
	if err != nil {
		return nil, err
	}
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, apperrors.NewValidationError("unit number is required", nil)
	}
	if _, err := s.properties.GetUnit(ctx, property.ID, number); err == nil {
		return nil, apperrors.NewConflict("unit already exists", map[string]any{"unit_number": number})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	unit := &domain.Unit{
		PropertyID: property.ID,
		Number:     number,
		Floor:      input.Floor,
		IsActive:   true,
	}
	if err := s.properties.CreateUnit(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// ListUnits returns the units of a property.
func (s *PropertyService) ListUnits(ctx context.Context, propertyCode string) ([]domain.Unit, error) {
	property, err := s.GetProperty(ctx, propertyCode)
	if err != nil {
		return nil, err
	}
	return s.properties.ListUnits(ctx, property.ID)
}
