package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-scheduler/internal/api/dto"
	"github.com/spec-kit/maintenance-scheduler/internal/auth"
	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/scheduling"
	"github.com/spec-kit/maintenance-scheduler/internal/service"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// SchedulingHandler manages the staff request queue: listing, declining,
// scheduling and completing requests.
type SchedulingHandler struct {
	requests   *service.RequestService
	scheduling *service.SchedulingService
}

// NewSchedulingHandler constructs handler.
func NewSchedulingHandler(requestService *service.RequestService, schedulingService *service.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{requests: requestService, scheduling: schedulingService}
}

// ListRequests GET /staff/requests.
func (h *SchedulingHandler) ListRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	filter := parseRequestQuery(c)
	items, err := h.requests.ListRequests(c.Context(), principal.Account, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummaries(items)})
}

// GetRequest GET /staff/requests/:id.
func (h *SchedulingHandler) GetRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	request, err := h.requests.GetRequest(c.Context(), principal.Account, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// ListTransitions GET /staff/requests/:id/transitions.
func (h *SchedulingHandler) ListTransitions(c *fiber.Ctx) error {
	current, allowed, err := h.requests.AllowedTransitions(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransitionsResponse{Current: current, Allowed: allowed}})
}

// ListHistory GET /staff/requests/:id/history.
func (h *SchedulingHandler) ListHistory(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	entries, err := h.requests.ListHistory(c.Context(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// Recommendations GET /staff/requests/:id/recommendations.
func (h *SchedulingHandler) Recommendations(c *fiber.Ctx) error {
	topN := parseInt(c.Query("top"), 0)
	recs, err := h.scheduling.RecommendWorkers(c.Context(), c.Params("id"), topN)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recommendationResponses(recs)})
}

// Schedule POST /staff/requests/:id/schedule books a worker onto the
// request, running the unit-conflict resolver and any emergency override.
func (h *SchedulingHandler) Schedule(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.WorkerEmail == "" || req.ScheduledDate.IsZero() {
		return apperrors.NewMissingRequiredData("worker_email and scheduled_date required", nil)
	}

	result, err := h.scheduling.ScheduleRequest(c.Context(), actorFromPrincipal(principal), c.Params("id"), req.WorkerEmail, req.ScheduledDate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": scheduleResponse(result)})
}

// Decline POST /staff/requests/:id/decline.
func (h *SchedulingHandler) Decline(c *fiber.Ctx) error {
	return h.transition(c, domain.RequestStatusDeclined)
}

// Close POST /staff/requests/:id/close.
func (h *SchedulingHandler) Close(c *fiber.Ctx) error {
	return h.transition(c, domain.RequestStatusClosed)
}

// Complete POST /staff/requests/:id/complete records the work order
// outcome; an unsuccessful visit sends the request back for rescheduling.
func (h *SchedulingHandler) Complete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.scheduling.CompleteWork(c.Context(), actorFromPrincipal(principal), c.Params("id"), req.Successful, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

func (h *SchedulingHandler) transition(c *fiber.Ctx, target domain.RequestStatus) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)

	request, err := h.scheduling.Transition(c.Context(), actorFromPrincipal(principal), c.Params("id"), target, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestSummary(request)})
}

func scheduleResponse(result *scheduling.TransitionResult) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{Request: requestDetail(result.Request)}
	for _, booking := range result.CancelledBookings {
		resp.CancelledBookings = append(resp.CancelledBookings, dto.CancelledBookingResponse{
			RequestID:       booking.RequestID,
			WorkerEmail:     booking.WorkerEmail,
			WorkOrderNumber: booking.WorkOrderNumber,
			ScheduledDate:   booking.ScheduledDate,
		})
	}
	return resp
}

func recommendationResponses(recs []scheduling.Recommendation) []dto.RecommendationResponse {
	resp := make([]dto.RecommendationResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, dto.RecommendationResponse{
			WorkerID:            rec.WorkerID,
			WorkerName:          rec.WorkerName,
			WorkerEmail:         rec.WorkerEmail,
			Specialization:      string(rec.Specialization),
			Score:               rec.Score,
			Confidence:          rec.Confidence,
			Reasoning:           rec.Reasoning,
			EstimatedCompletion: rec.EstimatedCompletion,
		})
	}
	return resp
}
