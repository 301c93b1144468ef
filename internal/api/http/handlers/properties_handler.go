package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-scheduler/internal/api/dto"
	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/service"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// PropertiesHandler manages the property and unit registry endpoints.
type PropertiesHandler struct {
	properties *service.PropertyService
}

// NewPropertiesHandler constructs handler.
func NewPropertiesHandler(propertyService *service.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{properties: propertyService}
}

// CreateProperty POST /properties.
func (h *PropertiesHandler) CreateProperty(c *fiber.Ctx) error {
	var req dto.CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	property, err := h.properties.CreateProperty(c.Context(), service.PropertyCreateInput{
		Code:                req.Code,
		Name:                req.Name,
		Address:             req.Address,
		SuperintendentEmail: req.SuperintendentEmail,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": propertyResponse(property)})
}

// UpdateProperty PATCH /properties/:code.
func (h *PropertiesHandler) UpdateProperty(c *fiber.Ctx) error {
	var req dto.UpdatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	property, err := h.properties.UpdateProperty(c.Context(), c.Params("code"), req.Name, req.Address, req.SuperintendentEmail, req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": propertyResponse(property)})
}

// GetProperty GET /properties/:code.
func (h *PropertiesHandler) GetProperty(c *fiber.Ctx) error {
	property, err := h.properties.GetProperty(c.Context(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": propertyResponse(property)})
}

// ListProperties GET /properties.
func (h *PropertiesHandler) ListProperties(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	properties, err := h.properties.ListProperties(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		items = append(items, propertyResponse(&properties[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddUnit POST /properties/:code/units.
func (h *PropertiesHandler) AddUnit(c *fiber.Ctx) error {
	var req dto.CreateUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	unit, err := h.properties.AddUnit(c.Context(), c.Params("code"), service.UnitCreateInput{
		Number: req.Number,
		Floor:  req.Floor,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": unitResponse(unit)})
}

// ListUnits GET /properties/:code/units.
func (h *PropertiesHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.properties.ListUnits(c.Context(), c.Params("code"))
	if err != nil {
		return err
	}
	items := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		items = append(items, unitResponse(&units[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func propertyResponse(property *domain.Property) dto.PropertyResponse {
	return dto.PropertyResponse{
		ID:                  property.ID,
		Code:                property.Code,
		Name:                property.Name,
		Address:             property.Address,
		SuperintendentEmail: property.SuperintendentEmail,
		IsActive:            property.IsActive,
		CreatedAt:           property.CreatedAt,
	}
}

func unitResponse(unit *domain.Unit) dto.UnitResponse {
	return dto.UnitResponse{
		ID:       unit.ID,
		Number:   unit.Number,
		Floor:    unit.Floor,
		IsActive: unit.IsActive,
	}
}
