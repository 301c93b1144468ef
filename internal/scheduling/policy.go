package scheduling

import (
	"fmt"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// allowedTransitions is the exhaustive request-status state machine. No status
// may transition to itself.
var allowedTransitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.RequestStatusDraft:     {domain.RequestStatusSubmitted},
	domain.RequestStatusSubmitted: {domain.RequestStatusScheduled, domain.RequestStatusDeclined},
	domain.RequestStatusScheduled: {domain.RequestStatusDone, domain.RequestStatusFailed},
	domain.RequestStatusFailed:    {domain.RequestStatusScheduled},
	domain.RequestStatusDone:      {domain.RequestStatusClosed},
	domain.RequestStatusDeclined:  {domain.RequestStatusClosed},
	domain.RequestStatusClosed:    {},
}

// transition is a (from, to) pair used by the role authorization table.
type transition struct {
	from, to domain.RequestStatus
}

// roleTransitions maps each role to the transitions it may initiate. This is
// orthogonal to status validity: an unauthorized actor on a valid transition
// gets a permissions failure, not a transition failure.
var roleTransitions = map[domain.Role]map[transition]struct{}{
	domain.RoleTenant: {
		{domain.RequestStatusDraft, domain.RequestStatusSubmitted}: {},
		{domain.RequestStatusDone, domain.RequestStatusClosed}:     {},
		{domain.RequestStatusDeclined, domain.RequestStatusClosed}: {},
	},
	domain.RolePropertySuperintendent: {
		{domain.RequestStatusSubmitted, domain.RequestStatusScheduled}: {},
		{domain.RequestStatusSubmitted, domain.RequestStatusDeclined}:  {},
		{domain.RequestStatusFailed, domain.RequestStatusScheduled}:    {},
		{domain.RequestStatusDone, domain.RequestStatusClosed}:         {},
		{domain.RequestStatusDeclined, domain.RequestStatusClosed}:     {},
	},
	domain.RoleWorker: {
		{domain.RequestStatusScheduled, domain.RequestStatusDone}:   {},
		{domain.RequestStatusScheduled, domain.RequestStatusFailed}: {},
	},
}

// AllowedNextStatuses returns the legal targets from the given status.
func AllowedNextStatuses(current domain.RequestStatus) []domain.RequestStatus {
	targets := allowedTransitions[current]
	out := make([]domain.RequestStatus, len(targets))
	copy(out, targets)
	return out
}

// IsValidTransition reports whether current -> next appears in the table.
func IsValidTransition(current, next domain.RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidStatusTransition error carrying the
// currently allowed targets when current -> next is not legal.
func ValidateTransition(current, next domain.RequestStatus) error {
	if IsValidTransition(current, next) {
		return nil
	}
	allowed := AllowedNextStatuses(current)
	return apperrors.NewDomainError(
		"INVALID_STATUS_TRANSITION",
		fmt.Sprintf("cannot transition from %s to %s", current, next),
		409,
		map[string]any{
			"current_status":   current,
			"target_status":    next,
			"allowed_statuses": allowed,
		},
	)
}

// IsAuthorized reports whether the role may initiate current -> next.
// SystemAdmin may initiate any transition.
func IsAuthorized(role domain.Role, current, next domain.RequestStatus) bool {
	if role == domain.RoleSystemAdmin {
		return true
	}
	_, ok := roleTransitions[role][transition{current, next}]
	return ok
}

// AuthorizeTransition returns an InsufficientPermissions error when the role
// may not initiate the transition. Callers check status validity first so the
// two failures stay distinguishable.
func AuthorizeTransition(role domain.Role, current, next domain.RequestStatus) error {
	if IsAuthorized(role, current, next) {
		return nil
	}
	return apperrors.NewInsufficientPermissions(
		fmt.Sprintf("role %s may not transition a request from %s to %s", role, current, next),
		map[string]any{"role": role, "current_status": current, "target_status": next},
	)
}

// IsActiveStatus reports whether a request in this status still occupies the
// workflow (Submitted or Scheduled).
func IsActiveStatus(s domain.RequestStatus) bool {
	return s == domain.RequestStatusSubmitted || s == domain.RequestStatusScheduled
}

// IsCompletedStatus reports whether work finished successfully (Done, Closed).
func IsCompletedStatus(s domain.RequestStatus) bool {
	return s == domain.RequestStatusDone || s == domain.RequestStatusClosed
}

// IsFinalStatus reports whether the request left the workflow (Closed,
// Declined).
func IsFinalStatus(s domain.RequestStatus) bool {
	return s == domain.RequestStatusClosed || s == domain.RequestStatusDeclined
}

// RequiresAttention reports whether the request needs superintendent action
// before it can proceed (Failed).
func RequiresAttention(s domain.RequestStatus) bool {
	return s == domain.RequestStatusFailed
}

// IsAssignableStatus reports whether a worker may be recommended for a
// request in this status.
func IsAssignableStatus(s domain.RequestStatus) bool {
	return s == domain.RequestStatusSubmitted || s == domain.RequestStatusFailed
}
