package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-scheduler/internal/domain"
)

func testProposal(date time.Time) BookingProposal {
	return BookingProposal{
		RequestID:              "req-new",
		PropertyCode:           "MAPLE",
		UnitNumber:             "101",
		ScheduledDate:          date,
		WorkerEmail:            "w2@example.com",
		WorkerSpecialization:   domain.SpecializationPlumbing,
		RequiredSpecialization: domain.SpecializationPlumbing,
	}
}

func testBooking(requestID, workerEmail string, date time.Time, emergency bool) domain.ExistingBooking {
	return domain.ExistingBooking{
		RequestID:            requestID,
		PropertyCode:         "MAPLE",
		UnitNumber:           "101",
		WorkerEmail:          workerEmail,
		WorkerSpecialization: domain.SpecializationPlumbing,
		WorkOrderNumber:      "WO-" + requestID,
		ScheduledDate:        date,
		Active:               true,
		Emergency:            emergency,
	}
}

func TestResolveSpecializationMismatchRejectsUnconditionally(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	proposal := testProposal(date)
	proposal.WorkerSpecialization = domain.SpecializationPainting
	proposal.RequiredSpecialization = domain.SpecializationPlumbing
	proposal.Emergency = true

	decision := ResolveUnitConflicts(proposal, nil)
	assert.False(t, decision.Accepted)
	assert.Equal(t, RejectSpecializationMismatch, decision.Reason)
}

func TestResolveGeneralMaintenanceCoversEitherSide(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	proposal := testProposal(date)
	proposal.WorkerSpecialization = domain.SpecializationGeneralMaintenance

	decision := ResolveUnitConflicts(proposal, nil)
	assert.True(t, decision.Accepted)
}

func TestResolveOtherWorkerHoldsUnit(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	incumbent := testBooking("req-old", "w1@example.com", date, false)

	decision := ResolveUnitConflicts(testProposal(date), []domain.ExistingBooking{incumbent})
	assert.False(t, decision.Accepted)
	assert.Equal(t, RejectUnitConflict, decision.Reason)
	require.Len(t, decision.ConflictingBookings, 1)
	assert.Equal(t, "req-old", decision.ConflictingBookings[0].RequestID)
}

func TestResolveEmergencyOverridesNonEmergencyIncumbent(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	incumbent := testBooking("req-old", "w1@example.com", date, false)

	proposal := testProposal(date)
	proposal.Emergency = true
	decision := ResolveUnitConflicts(proposal, []domain.ExistingBooking{incumbent})

	assert.True(t, decision.Accepted)
	require.Len(t, decision.CancelCandidates, 1)
	assert.Equal(t, "req-old", decision.CancelCandidates[0].RequestID)
	assert.Empty(t, decision.ResidualEmergencyConflicts)
}

func TestResolveEmergencyCannotOverrideEmergency(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	existing := []domain.ExistingBooking{
		testBooking("req-em", "w1@example.com", date, true),
		testBooking("req-normal", "w3@example.com", date, false),
	}

	proposal := testProposal(date)
	proposal.Emergency = true
	decision := ResolveUnitConflicts(proposal, existing)

	assert.False(t, decision.Accepted)
	assert.Equal(t, RejectUnitConflict, decision.Reason)
	require.Len(t, decision.ResidualEmergencyConflicts, 1)
	assert.Equal(t, "req-em", decision.ResidualEmergencyConflicts[0].RequestID)
	// The non-emergency incumbent stays marked for cancellation should the
	// residual conflict be resolved separately.
	require.Len(t, decision.CancelCandidates, 1)
	assert.Equal(t, "req-normal", decision.CancelCandidates[0].RequestID)
}

func TestResolveSameWorkerUnitDailyLimit(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	existing := []domain.ExistingBooking{
		testBooking("req-a", "w2@example.com", date, false),
		testBooking("req-b", "w2@example.com", date, false),
	}

	decision := ResolveUnitConflicts(testProposal(date), existing)
	assert.False(t, decision.Accepted)
	assert.Equal(t, RejectWorkerUnitLimit, decision.Reason)
	assert.Len(t, decision.ConflictingBookings, 2)
}

func TestResolveSameWorkerBelowLimitAccepted(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	existing := []domain.ExistingBooking{
		testBooking("req-a", "w2@example.com", date, false),
	}

	decision := ResolveUnitConflicts(testProposal(date), existing)
	assert.True(t, decision.Accepted)
	assert.Empty(t, decision.CancelCandidates)
}

func TestResolveEmergencySameWorkerLimitOverride(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	existing := []domain.ExistingBooking{
		testBooking("req-a", "w2@example.com", date, false),
		testBooking("req-b", "w2@example.com", date, false),
	}

	proposal := testProposal(date)
	proposal.Emergency = true
	decision := ResolveUnitConflicts(proposal, existing)

	assert.True(t, decision.Accepted)
	assert.Len(t, decision.CancelCandidates, 2)
}

func TestResolveIgnoresIrrelevantBookings(t *testing.T) {
	date := time.Now().AddDate(0, 0, 2)
	self := testBooking("req-new", "w1@example.com", date, false)
	inactive := testBooking("req-x", "w1@example.com", date, false)
	inactive.Active = false
	otherUnit := testBooking("req-y", "w1@example.com", date, false)
	otherUnit.UnitNumber = "202"
	otherDay := testBooking("req-z", "w1@example.com", date.AddDate(0, 0, 1), false)

	decision := ResolveUnitConflicts(testProposal(date), []domain.ExistingBooking{self, inactive, otherUnit, otherDay})
	assert.True(t, decision.Accepted)
}

func TestOverrideTrail(t *testing.T) {
	date := time.Date(2026, 9, 4, 9, 0, 0, 0, time.UTC)
	booking := testBooking("req-old", "w1@example.com", date, false)

	trail := OverrideTrail(booking)
	assert.Contains(t, trail, "w1@example.com")
	assert.Contains(t, trail, "WO-req-old")
	assert.Contains(t, trail, "2026-09-04T09:00:00Z")
}
