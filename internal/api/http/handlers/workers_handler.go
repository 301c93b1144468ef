package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-scheduler/internal/api/dto"
	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/service"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

const dateLayout = "2006-01-02"

// WorkersHandler manages roster endpoints.
type WorkersHandler struct {
	workers    *service.WorkerService
	scheduling *service.SchedulingService
}

// NewWorkersHandler constructs handler.
func NewWorkersHandler(workerService *service.WorkerService, schedulingService *service.SchedulingService) *WorkersHandler {
	return &WorkersHandler{workers: workerService, scheduling: schedulingService}
}

// CreateWorker POST /workers.
func (h *WorkersHandler) CreateWorker(c *fiber.Ctx) error {
	var req dto.CreateWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	worker, err := h.workers.RegisterWorker(c.Context(), service.WorkerCreateInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": workerResponse(worker)})
}

// ListWorkers GET /workers.
func (h *WorkersHandler) ListWorkers(c *fiber.Ctx) error {
	var specialization *string
	if spec := c.Query("specialization"); spec != "" {
		specialization = &spec
	}
	workers, err := h.workers.ListWorkers(c.Context(), specialization)
	if err != nil {
		return err
	}
	items := make([]dto.WorkerResponse, 0, len(workers))
	for _, worker := range workers {
		items = append(items, workerResponse(worker))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetWorker GET /workers/:email.
func (h *WorkersHandler) GetWorker(c *fiber.Ctx) error {
	worker, err := h.workers.GetWorker(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workerResponse(worker)})
}

// SetActive PATCH /workers/:email/active.
func (h *WorkersHandler) SetActive(c *fiber.Ctx) error {
	var req dto.SetWorkerActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	worker, err := h.workers.SetActive(c.Context(), c.Params("email"), req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workerResponse(worker)})
}

// Availability GET /workers/:email/availability reports booked days and the
// next fully free day inside the search horizon.
func (h *WorkersHandler) Availability(c *fiber.Ctx) error {
	from := time.Now()
	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return apperrors.NewValidationError("from must be YYYY-MM-DD", nil)
		}
		from = parsed
	}
	emergency := c.QueryBool("emergency", false)

	availability, err := h.scheduling.AvailabilityForWorker(c.Context(), c.Params("email"), from, emergency)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": availabilityResponse(availability)})
}

func workerResponse(worker *domain.Worker) dto.WorkerResponse {
	return dto.WorkerResponse{
		ID:             worker.ID,
		Name:           worker.Name,
		Email:          worker.Email,
		Phone:          worker.Phone,
		Specialization: string(worker.Specialization),
		Active:         worker.Active,
		Notes:          worker.Notes,
		CreatedAt:      worker.CreatedAt,
	}
}

func availabilityResponse(availability *service.WorkerAvailability) dto.WorkerAvailabilityResponse {
	resp := dto.WorkerAvailabilityResponse{
		Worker:               workerResponse(availability.Worker),
		BookedDates:          formatDates(availability.BookedDates),
		PartiallyBookedDates: formatDates(availability.PartiallyBookedDates),
	}
	if availability.NextAvailableDate != nil {
		next := availability.NextAvailableDate.Format(dateLayout)
		resp.NextAvailableDate = &next
	}
	return resp
}

func formatDates(dates []time.Time) []string {
	formatted := make([]string, 0, len(dates))
	for _, date := range dates {
		formatted = append(formatted, date.Format(dateLayout))
	}
	return formatted
}
