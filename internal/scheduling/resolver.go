package scheduling

import (
	"fmt"
	"time"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

// RejectReason classifies why a proposed booking was refused.
type RejectReason string

const (
	RejectSpecializationMismatch RejectReason = "SPECIALIZATION_MISMATCH"
	RejectUnitConflict           RejectReason = "UNIT_CONFLICT"
	RejectWorkerUnitLimit        RejectReason = "WORKER_UNIT_LIMIT"
)

// workerUnitDailyLimit caps how many bookings one worker may hold on the same
// unit and day, excluding the request being (re)scheduled.
const workerUnitDailyLimit = 2

// BookingProposal is the target of a scheduling decision.
type BookingProposal struct {
	RequestID              string
	PropertyCode           string
	UnitNumber             string
	ScheduledDate          time.Time
	WorkerEmail            string
	WorkerSpecialization   domain.Specialization
	RequiredSpecialization domain.Specialization
	Emergency              bool
}

// Decision is the resolver's verdict over a snapshot of existing bookings.
// When accepted, CancelCandidates lists the non-emergency bookings the caller
// must revoke before committing the new booking. When rejected,
// ResidualEmergencyConflicts lists emergency bookings that blocked the
// override and need separate resolution.
type Decision struct {
	Accepted                   bool
	Reason                     RejectReason
	Message                    string
	ConflictingBookings        []domain.ExistingBooking
	CancelCandidates           []domain.ExistingBooking
	ResidualEmergencyConflicts []domain.ExistingBooking
}

// ResolveUnitConflicts decides whether the proposed booking may proceed
// against the unit's existing active bookings for that day. The rules apply
// in order; the first rejection wins:
//
//  1. specialization mismatch rejects unconditionally, emergency or not;
//  2. a different worker holding the unit rejects under normal mode, and
//     under emergency mode marks non-emergency incumbents for cancellation
//     while emergency incumbents remain blocking residual conflicts;
//  3. the same worker already at the per-unit daily limit rejects under
//     normal mode, with the same emergency split as rule 2.
func ResolveUnitConflicts(proposal BookingProposal, existing []domain.ExistingBooking) Decision {
	if !proposal.WorkerSpecialization.Covers(proposal.RequiredSpecialization) {
		return Decision{
			Reason: RejectSpecializationMismatch,
			Message: fmt.Sprintf("worker specialization %s does not cover required %s",
				proposal.WorkerSpecialization, proposal.RequiredSpecialization),
		}
	}

	var otherWorker, sameWorker []domain.ExistingBooking
	for _, booking := range existing {
		if !booking.Active || booking.RequestID == proposal.RequestID {
			continue
		}
		if booking.PropertyCode != proposal.PropertyCode || booking.UnitNumber != proposal.UnitNumber {
			continue
		}
		if !booking.SameDay(proposal.ScheduledDate) {
			continue
		}
		if booking.WorkerEmail == proposal.WorkerEmail {
			sameWorker = append(sameWorker, booking)
		} else {
			otherWorker = append(otherWorker, booking)
		}
	}

	decision := Decision{}

	if len(otherWorker) > 0 {
		if !proposal.Emergency {
			incumbent := otherWorker[0]
			return Decision{
				Reason: RejectUnitConflict,
				Message: fmt.Sprintf("unit %s/%s is held by %s on %s",
					proposal.PropertyCode, proposal.UnitNumber,
					incumbent.WorkerEmail, proposal.ScheduledDate.Format("2006-01-02")),
				ConflictingBookings: otherWorker,
			}
		}
		for _, booking := range otherWorker {
			if booking.Emergency {
				decision.ResidualEmergencyConflicts = append(decision.ResidualEmergencyConflicts, booking)
			} else {
				decision.CancelCandidates = append(decision.CancelCandidates, booking)
			}
		}
		if len(decision.ResidualEmergencyConflicts) > 0 {
			decision.Reason = RejectUnitConflict
			decision.Message = fmt.Sprintf("unit %s/%s has %d emergency bookings that cannot be overridden",
				proposal.PropertyCode, proposal.UnitNumber, len(decision.ResidualEmergencyConflicts))
			decision.ConflictingBookings = decision.ResidualEmergencyConflicts
			return decision
		}
	}

	if len(sameWorker) >= workerUnitDailyLimit {
		if !proposal.Emergency {
			return Decision{
				Reason: RejectWorkerUnitLimit,
				Message: fmt.Sprintf("%s already holds %d bookings for unit %s/%s that day",
					proposal.WorkerEmail, len(sameWorker), proposal.PropertyCode, proposal.UnitNumber),
				ConflictingBookings: sameWorker,
			}
		}
		var emergencyHeld []domain.ExistingBooking
		for _, booking := range sameWorker {
			if booking.Emergency {
				emergencyHeld = append(emergencyHeld, booking)
			} else {
				decision.CancelCandidates = append(decision.CancelCandidates, booking)
			}
		}
		if len(emergencyHeld) >= workerUnitDailyLimit {
			decision.Reason = RejectWorkerUnitLimit
			decision.Message = fmt.Sprintf("%s still at the per-unit limit after override: %d emergency bookings remain",
				proposal.WorkerEmail, len(emergencyHeld))
			decision.ResidualEmergencyConflicts = append(decision.ResidualEmergencyConflicts, emergencyHeld...)
			decision.ConflictingBookings = emergencyHeld
			return decision
		}
	}

	decision.Accepted = true
	return decision
}

// OverrideTrail renders the mandatory audit note persisted on a request whose
// booking is revoked by an emergency override.
func OverrideTrail(booking domain.ExistingBooking) string {
	return fmt.Sprintf("emergency override: booking revoked from %s (work order %s, originally scheduled %s)",
		booking.WorkerEmail, booking.WorkOrderNumber, booking.ScheduledDate.Format(time.RFC3339))
}
