package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-scheduler/internal/api/dto"
	"github.com/spec-kit/maintenance-scheduler/internal/auth"
	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/service"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// RequestsHandler manages tenant maintenance-request endpoints.
type RequestsHandler struct {
	requests   *service.RequestService
	scheduling *service.SchedulingService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService, schedulingService *service.SchedulingService) *RequestsHandler {
	return &RequestsHandler{requests: requestService, scheduling: schedulingService}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("tenant required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyCode == "" || req.UnitNumber == "" || req.Title == "" {
		return apperrors.NewValidationError("property_code, unit_number, title required", nil)
	}

	request, err := h.requests.CreateRequest(c.Context(), principal.Account, service.RequestCreateInput{
		PropertyCode: req.PropertyCode,
		UnitNumber:   req.UnitNumber,
		Title:        req.Title,
		Description:  req.Description,
		Urgency:      req.Urgency,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestSummary(request)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("tenant required")
	}
	filter := parseRequestQuery(c)
	items, err := h.requests.ListTenantRequests(c.Context(), principal.Account.ID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummaries(items)})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("tenant required")
	}
	request, err := h.requests.GetRequestForTenant(c.Context(), principal.Account.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// SubmitRequest POST /requests/:id/submit moves a draft into the queue.
func (h *RequestsHandler) SubmitRequest(c *fiber.Ctx) error {
	return h.transition(c, domain.RequestStatusSubmitted)
}

// CloseRequest POST /requests/:id/close acknowledges a finished request.
func (h *RequestsHandler) CloseRequest(c *fiber.Ctx) error {
	return h.transition(c, domain.RequestStatusClosed)
}

// ListHistory GET /requests/:id/history.
func (h *RequestsHandler) ListHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("tenant required")
	}
	requestID := c.Params("id")
	if _, err := h.requests.GetRequestForTenant(c.Context(), principal.Account.ID, requestID); err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	entries, err := h.requests.ListHistory(c.Context(), requestID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

func (h *RequestsHandler) transition(c *fiber.Ctx, target domain.RequestStatus) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("tenant required")
	}
	requestID := c.Params("id")
	if _, err := h.requests.GetRequestForTenant(c.Context(), principal.Account.ID, requestID); err != nil {
		return err
	}
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)

	request, err := h.scheduling.Transition(c.Context(), actorFromPrincipal(principal), requestID, target, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(request)})
}

func actorFromPrincipal(principal *auth.Principal) service.Actor {
	return service.Actor{Role: principal.Role, AccountID: principal.Account.ID}
}

func parseRequestQuery(c *fiber.Ctx) service.RequestListFilter {
	filter := service.RequestListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.RequestStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if urgencyStr := c.Query("urgency"); urgencyStr != "" {
		for _, part := range strings.Split(urgencyStr, ",") {
			filter.Urgencies = append(filter.Urgencies, domain.Urgency(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if property := c.Query("property_code"); property != "" {
		filter.PropertyCode = &property
	}
	if unit := c.Query("unit_number"); unit != "" {
		filter.UnitNumber = &unit
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func requestSummaries(items []domain.Request) []dto.RequestSummary {
	resp := make([]dto.RequestSummary, 0, len(items))
	for i := range items {
		resp = append(resp, requestSummary(&items[i]))
	}
	return resp
}

func requestSummary(request *domain.Request) dto.RequestSummary {
	return dto.RequestSummary{
		ID:                  request.ID,
		Code:                request.Code,
		PropertyCode:        request.PropertyCode,
		UnitNumber:          request.UnitNumber,
		Title:               request.Title,
		Urgency:             request.Urgency,
		Status:              request.Status,
		AssignedWorkerEmail: request.AssignedWorkerEmail,
		ScheduledDate:       request.ScheduledDate,
		CreatedAt:           request.CreatedAt,
		UpdatedAt:           request.UpdatedAt,
	}
}

func requestDetail(request *domain.Request) dto.RequestDetailResponse {
	return dto.RequestDetailResponse{
		ID:                   request.ID,
		Code:                 request.Code,
		PropertyCode:         request.PropertyCode,
		UnitNumber:           request.UnitNumber,
		Title:                request.Title,
		Description:          request.Description,
		Urgency:              request.Urgency,
		Status:               request.Status,
		SuperintendentEmail:  request.SuperintendentEmail,
		AssignedWorkerEmail:  request.AssignedWorkerEmail,
		WorkOrderNumber:      request.WorkOrderNumber,
		ScheduledDate:        request.ScheduledDate,
		CompletionSuccessful: request.CompletionSuccessful,
		CompletionNotes:      request.CompletionNotes,
		ClosureNotes:         request.ClosureNotes,
		CreatedAt:            request.CreatedAt,
		UpdatedAt:            request.UpdatedAt,
	}
}

func historyResponses(entries []domain.RequestHistory) []dto.RequestHistoryResponse {
	resp := make([]dto.RequestHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.RequestHistoryResponse{
			ID:            entry.ID,
			ChangedByRole: entry.ChangedByRole,
			ChangedByID:   entry.ChangedByID,
			ChangeType:    entry.ChangeType,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return resp
}
