package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	"github.com/spec-kit/maintenance-scheduler/internal/events"
	"github.com/spec-kit/maintenance-scheduler/internal/repository"
	"github.com/spec-kit/maintenance-scheduler/internal/scheduling"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// Actor identifies the caller of a service operation.
type Actor struct {
	Role      domain.Role
	AccountID string
}

// RequestService coordinates maintenance-request intake and lookup.
type RequestService struct {
	requests   repository.RequestRepository
	properties repository.PropertyRepository
	history    repository.RequestHistoryRepository
	dispatcher events.Dispatcher
}

// RequestDependencies bundles repositories for the request service.
type RequestDependencies struct {
	RequestRepo  repository.RequestRepository
	PropertyRepo repository.PropertyRepository
	HistoryRepo  repository.RequestHistoryRepository
	Dispatcher   events.Dispatcher
}

// RequestCreateInput describes request creation payload.
type RequestCreateInput struct {
	PropertyCode string
	UnitNumber   string
	Title        string
	Description  string
	Urgency      domain.Urgency
}

// RequestListFilter describes listing filters.
type RequestListFilter struct {
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

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		properties: deps.PropertyRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateRequest opens a draft request for a tenant against a unit. The
// request code is <propertyCode>-<unit>-<sequence>, unique per unit.
func (s *RequestService) CreateRequest(ctx context.Context, tenant *domain.Account, input RequestCreateInput) (*domain.Request, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}

	property, err := s.properties.GetByCode(ctx, input.PropertyCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_code": input.PropertyCode})
		}
		return nil, err
	}
	if !property.IsActive {
		return nil, apperrors.NewConflict("property inactive", map[string]any{"property_code": property.Code})
	}
	unit, err := s.properties.GetUnit(ctx, property.ID, input.UnitNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("unit", map[string]any{"unit_number": input.UnitNumber})
		}
		return nil, err
	}
	if !unit.IsActive {
		return nil, apperrors.NewConflict("unit inactive", map[string]any{"unit_number": unit.Number})
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyNormal
	}
	if urgency.Rank() > domain.UrgencyLow.Rank() {
		return nil, apperrors.NewValidationError("unknown urgency", map[string]any{"urgency": urgency})
	}

	seq, err := s.requests.NextSequenceForUnit(ctx, property.Code, unit.Number)
	if err != nil {
		return nil, err
	}

	request := &domain.Request{
		Code:                fmt.Sprintf("%s-%s-%04d", property.Code, unit.Number, seq),
		Title:               title,
		Description:         strings.TrimSpace(input.Description),
		Urgency:             urgency,
		Status:              domain.RequestStatusDraft,
		TenantID:            tenant.ID,
		PropertyCode:        property.Code,
		UnitNumber:          unit.Number,
		SuperintendentEmail: property.SuperintendentEmail,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		Actor:     events.Actor{Role: domain.RoleTenant, AccountID: &tenant.ID},
		Payload: events.RequestCreatedPayload{
			Code:         request.Code,
			PropertyCode: request.PropertyCode,
			UnitNumber:   request.UnitNumber,
			Urgency:      request.Urgency,
			Title:        request.Title,
		},
	})
	return request, nil
}

// ListTenantRequests returns paginated requests opened by the tenant.
func (s *RequestService) ListTenantRequests(ctx context.Context, tenantID string, filter RequestListFilter) ([]domain.Request, error) {
	repoFilter := s.toRepoFilter(filter)
	repoFilter.TenantID = &tenantID
	return s.requests.ListWithFilter(ctx, repoFilter)
}

// ListRequests returns requests visible to staff, scoped by the actor role:
// superintendents see their properties, workers their own assignments.
func (s *RequestService) ListRequests(ctx context.Context, actor *domain.Account, filter RequestListFilter) ([]domain.Request, error) {
	repoFilter := s.toRepoFilter(filter)
	if actor.Role == domain.RoleWorker {
		repoFilter.WorkerEmail = &actor.Email
	}
	return s.requests.ListWithFilter(ctx, repoFilter)
}

// GetRequestForTenant fetches a request ensuring ownership.
func (s *RequestService) GetRequestForTenant(ctx context.Context, tenantID, requestID string) (*domain.Request, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.TenantID != tenantID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return request, nil
}

// GetRequest fetches a request for staff roles.
func (s *RequestService) GetRequest(ctx context.Context, actor *domain.Account, requestID string) (*domain.Request, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleWorker {
		if request.AssignedWorkerEmail == nil || *request.AssignedWorkerEmail != actor.Email {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return request, nil
}

// AllowedTransitions reports the states the request can move to next.
func (s *RequestService) AllowedTransitions(ctx context.Context, requestID string) (domain.RequestStatus, []domain.RequestStatus, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return "", nil, err
	}
	return request.Status, scheduling.AllowedNextStatuses(request.Status), nil
}

// ListHistory returns the audit trail for a request, newest first.
func (s *RequestService) ListHistory(ctx context.Context, requestID string, limit, offset int) ([]domain.RequestHistory, error) {
	if _, err := s.getRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return s.history.ListByRequest(ctx, requestID, limit, offset)
}

func (s *RequestService) getRequest(ctx context.Context, requestID string) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, err
	}
	return request, nil
}

func (s *RequestService) toRepoFilter(filter RequestListFilter) repository.RequestFilter {
	return repository.RequestFilter{
		PropertyCode: filter.PropertyCode,
		UnitNumber:   filter.UnitNumber,
		WorkerEmail:  filter.WorkerEmail,
		Statuses:     filter.Statuses,
		Urgencies:    filter.Urgencies,
		SearchTerm:   filter.SearchTerm,
		CreatedFrom:  filter.CreatedFrom,
		CreatedTo:    filter.CreatedTo,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
