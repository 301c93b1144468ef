package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

var allStatuses = []domain.RequestStatus{
	domain.RequestStatusDraft,
	domain.RequestStatusSubmitted,
	domain.RequestStatusScheduled,
	domain.RequestStatusDone,
	domain.RequestStatusFailed,
	domain.RequestStatusDeclined,
	domain.RequestStatusClosed,
}

func TestTransitionTableClosure(t *testing.T) {
	expected := map[domain.RequestStatus][]domain.RequestStatus{
		domain.RequestStatusDraft:     {domain.RequestStatusSubmitted},
		domain.RequestStatusSubmitted: {domain.RequestStatusScheduled, domain.RequestStatusDeclined},
		domain.RequestStatusScheduled: {domain.RequestStatusDone, domain.RequestStatusFailed},
		domain.RequestStatusFailed:    {domain.RequestStatusScheduled},
		domain.RequestStatusDone:      {domain.RequestStatusClosed},
		domain.RequestStatusDeclined:  {domain.RequestStatusClosed},
		domain.RequestStatusClosed:    {},
	}

	for _, from := range allStatuses {
		assert.ElementsMatch(t, expected[from], AllowedNextStatuses(from), "from %s", from)
		for _, to := range allStatuses {
			want := false
			for _, allowed := range expected[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, IsValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestNoSelfTransitions(t *testing.T) {
	for _, s := range allStatuses {
		assert.False(t, IsValidTransition(s, s), "self transition on %s", s)
	}
}

func TestValidateTransitionError(t *testing.T) {
	err := ValidateTransition(domain.RequestStatusDraft, domain.RequestStatusScheduled)
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", apperrors.CodeOf(err))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 409, domainErr.HTTPStatus)
	assert.Equal(t,
		[]domain.RequestStatus{domain.RequestStatusSubmitted},
		domainErr.Details["allowed_statuses"])
}

func TestRoleAuthorization(t *testing.T) {
	// Tenants own the submit and close legs.
	assert.True(t, IsAuthorized(domain.RoleTenant, domain.RequestStatusDraft, domain.RequestStatusSubmitted))
	assert.True(t, IsAuthorized(domain.RoleTenant, domain.RequestStatusDone, domain.RequestStatusClosed))
	assert.True(t, IsAuthorized(domain.RoleTenant, domain.RequestStatusDeclined, domain.RequestStatusClosed))
	assert.False(t, IsAuthorized(domain.RoleTenant, domain.RequestStatusSubmitted, domain.RequestStatusScheduled))
	assert.False(t, IsAuthorized(domain.RoleTenant, domain.RequestStatusScheduled, domain.RequestStatusDone))

	// Superintendents drive the queue, including failed-work rescheduling.
	assert.True(t, IsAuthorized(domain.RolePropertySuperintendent, domain.RequestStatusSubmitted, domain.RequestStatusScheduled))
	assert.True(t, IsAuthorized(domain.RolePropertySuperintendent, domain.RequestStatusSubmitted, domain.RequestStatusDeclined))
	assert.True(t, IsAuthorized(domain.RolePropertySuperintendent, domain.RequestStatusFailed, domain.RequestStatusScheduled))
	assert.False(t, IsAuthorized(domain.RolePropertySuperintendent, domain.RequestStatusDraft, domain.RequestStatusSubmitted))
	assert.False(t, IsAuthorized(domain.RolePropertySuperintendent, domain.RequestStatusScheduled, domain.RequestStatusDone))

	// Workers only report outcomes.
	assert.True(t, IsAuthorized(domain.RoleWorker, domain.RequestStatusScheduled, domain.RequestStatusDone))
	assert.True(t, IsAuthorized(domain.RoleWorker, domain.RequestStatusScheduled, domain.RequestStatusFailed))
	assert.False(t, IsAuthorized(domain.RoleWorker, domain.RequestStatusSubmitted, domain.RequestStatusScheduled))
	assert.False(t, IsAuthorized(domain.RoleWorker, domain.RequestStatusDone, domain.RequestStatusClosed))
}

func TestSystemAdminBypassesRoleTable(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range AllowedNextStatuses(from) {
			assert.True(t, IsAuthorized(domain.RoleSystemAdmin, from, to), "%s -> %s", from, to)
		}
	}
}

func TestAuthorizeTransitionError(t *testing.T) {
	err := AuthorizeTransition(domain.RoleTenant, domain.RequestStatusSubmitted, domain.RequestStatusScheduled)
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", apperrors.CodeOf(err))
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, IsActiveStatus(domain.RequestStatusSubmitted))
	assert.True(t, IsActiveStatus(domain.RequestStatusScheduled))
	assert.False(t, IsActiveStatus(domain.RequestStatusDraft))

	assert.True(t, IsCompletedStatus(domain.RequestStatusDone))
	assert.True(t, IsFinalStatus(domain.RequestStatusDeclined))
	assert.True(t, RequiresAttention(domain.RequestStatusFailed))

	assert.True(t, IsAssignableStatus(domain.RequestStatusSubmitted))
	assert.True(t, IsAssignableStatus(domain.RequestStatusFailed))
	assert.False(t, IsAssignableStatus(domain.RequestStatusScheduled))
}
