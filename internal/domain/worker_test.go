package domain

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

// futureDay returns a clock time on the day daysAhead from now.
func futureDay(daysAhead, hour int) time.Time {
	day := time.Now().AddDate(0, 0, daysAhead)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}

func newTestWorker() *Worker {
	return NewWorker("Pat Doe", "pat@example.com", "555-0101", SpecializationPlumbing)
}

func TestAssignValidation(t *testing.T) {
	w := newTestWorker()

	err := w.Assign("", futureDay(1, 9), "")
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))

	err = w.Assign("WO-1", time.Now().AddDate(0, 0, -1), "")
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))

	w.Active = false
	err = w.Assign("WO-1", futureDay(1, 9), "")
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))
}

func TestAssignDuplicateWorkOrder(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 9), ""))

	err := w.Assign("WO-1", futureDay(2, 9), "")
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))
}

func TestAssignDailyCapacity(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 8), ""))
	require.NoError(t, w.Assign("WO-2", futureDay(1, 13), ""))

	err := w.Assign("WO-3", futureDay(1, 18), "")
	require.Error(t, err)
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))

	// A different day is unaffected.
	assert.NoError(t, w.Assign("WO-3", futureDay(2, 9), ""))
}

func TestAssignEmergencyThirdSlot(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 8), ""))
	require.NoError(t, w.Assign("WO-2", futureDay(1, 13), ""))

	// The normal cap is exhausted, but the emergency path admits a third.
	err := w.Assign("WO-3", futureDay(1, 18), "")
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))
	require.NoError(t, w.AssignEmergency("WO-3", futureDay(1, 18), ""))
	assert.Len(t, w.ActiveAssignmentsOn(futureDay(1, 0)), 3)

	// The relaxed cap is still a cap.
	err = w.AssignEmergency("WO-4", futureDay(1, 22), "")
	assert.Equal(t, "INVALID_ASSIGNMENT", apperrors.CodeOf(err))
}

func TestAssignWindowOverlap(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 9), ""))

	// 11:00 falls inside the 09:00-13:00 window.
	err := w.Assign("WO-2", futureDay(1, 11), "")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "WO-1", domainErr.Details["conflicting_work_order"])

	// 13:00 starts exactly when the first window ends.
	assert.NoError(t, w.Assign("WO-2", futureDay(1, 13), ""))
}

func TestCompleteFreesCapacity(t *testing.T) {
	w := newTestWorker()
	day := futureDay(1, 9)
	require.NoError(t, w.Assign("WO-1", day, ""))
	require.NoError(t, w.Assign("WO-2", futureDay(1, 14), ""))
	assert.False(t, w.IsAvailableOn(day))

	require.NoError(t, w.Complete("WO-1", true, "fixed"))
	assert.True(t, w.IsAvailableOn(day))
	assert.Equal(t, 1, w.ActiveAssignmentCount())

	got := w.Assignments["WO-1"]
	assert.True(t, got.Completed)
	assert.True(t, got.Successful)
	assert.Equal(t, "fixed", got.CompletionNotes)
}

func TestCompleteTwiceFails(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 9), ""))
	require.NoError(t, w.Complete("WO-1", false, "tenant absent"))

	err := w.Complete("WO-1", true, "")
	assert.Equal(t, "ASSIGNMENT_NOT_FOUND", apperrors.CodeOf(err))

	err = w.Complete("WO-404", true, "")
	assert.Equal(t, "ASSIGNMENT_NOT_FOUND", apperrors.CodeOf(err))
}

func TestRevoke(t *testing.T) {
	w := newTestWorker()
	day := futureDay(1, 9)
	require.NoError(t, w.Assign("WO-1", day, "notes"))

	revoked, err := w.Revoke("WO-1")
	require.NoError(t, err)
	assert.Equal(t, "WO-1", revoked.WorkOrderNumber)
	assert.Equal(t, 0, w.ActiveAssignmentCount())

	_, err = w.Revoke("WO-1")
	assert.Equal(t, "ASSIGNMENT_NOT_FOUND", apperrors.CodeOf(err))
}

func TestBookedAndPartiallyBookedDates(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 8), ""))
	require.NoError(t, w.Assign("WO-2", futureDay(1, 13), ""))
	require.NoError(t, w.Assign("WO-3", futureDay(2, 9), ""))

	start, end := futureDay(0, 0), futureDay(3, 0)

	booked := w.BookedDates(start, end, false)
	require.Len(t, booked, 1)
	assert.True(t, booked[0].Equal(startOfDay(futureDay(1, 0))))

	// Under emergency rules two assignments still leave a slot.
	assert.Empty(t, w.BookedDates(start, end, true))

	partial := w.PartiallyBookedDates(start, end)
	require.Len(t, partial, 1)
	assert.True(t, partial[0].Equal(startOfDay(futureDay(2, 0))))

	w.Active = false
	assert.Empty(t, w.BookedDates(start, end, false))
}

func TestAvailabilityScore(t *testing.T) {
	w := newTestWorker()
	day := futureDay(1, 0)
	assert.Equal(t, 2, w.AvailabilityScore(day, false))

	require.NoError(t, w.Assign("WO-1", futureDay(1, 8), ""))
	assert.Equal(t, 1, w.AvailabilityScore(day, false))

	require.NoError(t, w.Assign("WO-2", futureDay(1, 13), ""))
	assert.Equal(t, 0, w.AvailabilityScore(day, false))
	assert.Equal(t, 1, w.AvailabilityScore(day, true))

	assert.Equal(t, 0, w.AvailabilityScore(time.Now().AddDate(0, 0, -1), true))
}

func TestNextFullyAvailableDate(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 8), ""))
	require.NoError(t, w.Assign("WO-2", futureDay(1, 13), ""))
	require.NoError(t, w.Assign("WO-3", futureDay(2, 9), ""))

	next, ok := w.NextFullyAvailableDate(futureDay(1, 0), DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.True(t, next.Equal(startOfDay(futureDay(3, 0))))
}

// A worker fully booked on the next two days is still fully available today.
func TestNextFullyAvailableDateFromToday(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 8), ""))
	require.NoError(t, w.Assign("WO-2", futureDay(1, 13), ""))
	require.NoError(t, w.Assign("WO-3", futureDay(2, 8), ""))
	require.NoError(t, w.Assign("WO-4", futureDay(2, 13), ""))

	next, ok := w.NextFullyAvailableDate(time.Now(), DefaultSearchHorizonDays)
	require.True(t, ok)
	assert.True(t, next.Equal(startOfDay(time.Now())))
}

func TestNextFullyAvailableDateHorizonExhausted(t *testing.T) {
	w := newTestWorker()
	for day := 1; day <= 4; day++ {
		require.NoError(t, w.Assign(fmt.Sprintf("WO-%d", day), futureDay(day, 9), ""))
	}

	_, ok := w.NextFullyAvailableDate(futureDay(1, 0), 3)
	assert.False(t, ok)

	w.Active = false
	_, ok = w.NextFullyAvailableDate(futureDay(1, 0), DefaultSearchHorizonDays)
	assert.False(t, ok)
}

func TestUpcomingWorkload(t *testing.T) {
	w := newTestWorker()
	require.NoError(t, w.Assign("WO-1", futureDay(1, 9), ""))
	require.NoError(t, w.Assign("WO-2", futureDay(5, 9), ""))
	require.NoError(t, w.Assign("WO-3", futureDay(10, 9), ""))
	require.NoError(t, w.Complete("WO-1", true, ""))

	assert.Equal(t, 1, w.UpcomingWorkload(time.Now(), 7))
	assert.Equal(t, 2, w.UpcomingWorkload(time.Now(), 30))
}

func TestRankingScore(t *testing.T) {
	free := newTestWorker()
	busy := NewWorker("Sam Roe", "sam@example.com", "", SpecializationPlumbing)
	require.NoError(t, busy.Assign("WO-1", futureDay(1, 9), ""))

	from := futureDay(0, 0)
	assert.Less(t, free.RankingScore(from), busy.RankingScore(from))

	free.Active = false
	assert.Equal(t, math.MaxInt, free.RankingScore(from))
}
