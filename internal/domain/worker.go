package domain

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/spec-kit/maintenance-scheduler/pkg/util"
)

const (
	// DailyAssignmentCapacity is the number of active assignments a worker
	// may hold on one calendar day under normal scheduling rules.
	DailyAssignmentCapacity = 2

	// EmergencyDailyCapacity relaxes the cap by one slot for emergency work.
	EmergencyDailyCapacity = 3

	// DefaultSearchHorizonDays bounds the next-available-date search.
	DefaultSearchHorizonDays = 60
)

// Worker is the aggregate for a service technician. The worker is the sole
// mutator of its assignment collection.
type Worker struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Specialization Specialization
	Active         bool
	Notes          string
	Assignments    map[string]Assignment
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewWorker constructs an active worker with an empty assignment collection.
func NewWorker(name, email, phone string, specialization Specialization) *Worker {
	if specialization == "" {
		specialization = SpecializationGeneralMaintenance
	}
	return &Worker{
		Name:           name,
		Email:          email,
		Phone:          phone,
		Specialization: specialization,
		Active:         true,
		Assignments:    map[string]Assignment{},
	}
}

// ActiveAssignmentsOn returns the non-completed assignments scheduled on the
// given calendar day.
func (w *Worker) ActiveAssignmentsOn(date time.Time) []Assignment {
	var active []Assignment
	for _, a := range w.Assignments {
		if !a.Completed && a.SameDay(date) {
			active = append(active, a)
		}
	}
	return active
}

// ActiveAssignmentCount returns the total number of non-completed assignments.
func (w *Worker) ActiveAssignmentCount() int {
	count := 0
	for _, a := range w.Assignments {
		if !a.Completed {
			count++
		}
	}
	return count
}

// UpcomingWorkload counts active assignments scheduled within the given
// number of days starting at from.
func (w *Worker) UpcomingWorkload(from time.Time, days int) int {
	end := startOfDay(from).AddDate(0, 0, days)
	count := 0
	for _, a := range w.Assignments {
		if a.Completed {
			continue
		}
		if !a.ScheduledDate.Before(startOfDay(from)) && a.ScheduledDate.Before(end) {
			count++
		}
	}
	return count
}

// IsAvailableOn reports day-level availability: the worker is active, the day
// is not in the past, and the day holds fewer than two active assignments.
func (w *Worker) IsAvailableOn(date time.Time) bool {
	if !w.Active || beforeToday(date) {
		return false
	}
	return len(w.ActiveAssignmentsOn(date)) < DailyAssignmentCapacity
}

// IsAvailableAt additionally checks that the proposed 4-hour work window does
// not overlap any existing assignment's window on that day.
func (w *Worker) IsAvailableAt(date time.Time) bool {
	if !w.IsAvailableOn(date) {
		return false
	}
	for _, a := range w.ActiveAssignmentsOn(date) {
		if a.Overlaps(date) {
			return false
		}
	}
	return true
}

// Assign books a new work order at the given time under the normal daily cap.
// The work-order number must be unique within the worker; the capacity and
// overlap invariants are enforced here, not by callers.
func (w *Worker) Assign(workOrderNumber string, date time.Time, notes string) error {
	return w.assign(workOrderNumber, date, notes, DailyAssignmentCapacity)
}

// AssignEmergency books a work order under the relaxed emergency cap: a day
// already at normal capacity still admits one more assignment.
func (w *Worker) AssignEmergency(workOrderNumber string, date time.Time, notes string) error {
	return w.assign(workOrderNumber, date, notes, EmergencyDailyCapacity)
}

func (w *Worker) assign(workOrderNumber string, date time.Time, notes string, dailyLimit int) error {
	if workOrderNumber == "" {
		return invalidAssignment("work order number is required", nil)
	}
	if !date.After(time.Now()) {
		return invalidAssignment("scheduled date must be in the future", map[string]any{"scheduled_date": date})
	}
	if !w.Active {
		return invalidAssignment("worker is inactive", map[string]any{"worker_email": w.Email})
	}
	if _, exists := w.Assignments[workOrderNumber]; exists {
		return invalidAssignment("work order already assigned", map[string]any{"work_order_number": workOrderNumber})
	}
	sameDay := w.ActiveAssignmentsOn(date)
	if len(sameDay) >= dailyLimit {
		return invalidAssignment(
			fmt.Sprintf("worker already holds %d active assignments on %s", len(sameDay), date.Format("2006-01-02")),
			map[string]any{"date": date.Format("2006-01-02")},
		)
	}
	for _, a := range sameDay {
		if a.Overlaps(date) {
			return invalidAssignment(
				fmt.Sprintf("time window conflicts with work order %s scheduled at %s", a.WorkOrderNumber, a.ScheduledDate.Format(time.RFC3339)),
				map[string]any{"conflicting_work_order": a.WorkOrderNumber, "conflicting_time": a.ScheduledDate},
			)
		}
	}
	if w.Assignments == nil {
		w.Assignments = map[string]Assignment{}
	}
	w.Assignments[workOrderNumber] = Assignment{
		WorkOrderNumber: workOrderNumber,
		ScheduledDate:   date,
		Notes:           notes,
	}
	return nil
}

// Complete atomically replaces an active assignment with its completed copy.
// A completed work order cannot be completed again.
func (w *Worker) Complete(workOrderNumber string, successful bool, notes string) error {
	a, ok := w.Assignments[workOrderNumber]
	if !ok || a.Completed {
		return assignmentNotFound(workOrderNumber)
	}
	a.Completed = true
	a.Successful = successful
	a.CompletionNotes = notes
	w.Assignments[workOrderNumber] = a
	return nil
}

// Revoke removes an active assignment without completing it, returning the
// removed booking. Used by the emergency-override cascade to free capacity.
func (w *Worker) Revoke(workOrderNumber string) (Assignment, error) {
	a, ok := w.Assignments[workOrderNumber]
	if !ok || a.Completed {
		return Assignment{}, assignmentNotFound(workOrderNumber)
	}
	delete(w.Assignments, workOrderNumber)
	return a, nil
}

// BookedDates returns the days within [start, end] that are at capacity:
// two or more active assignments, three or more under emergency rules.
// An inactive worker has no booked dates because it has no availability.
func (w *Worker) BookedDates(start, end time.Time, emergency bool) []time.Time {
	limit := DailyAssignmentCapacity
	if emergency {
		limit = EmergencyDailyCapacity
	}
	return w.datesWithActiveCount(start, end, func(count int) bool { return count >= limit })
}

// PartiallyBookedDates returns the days within [start, end] holding exactly
// one active assignment.
func (w *Worker) PartiallyBookedDates(start, end time.Time) []time.Time {
	return w.datesWithActiveCount(start, end, func(count int) bool { return count == 1 })
}

func (w *Worker) datesWithActiveCount(start, end time.Time, match func(int) bool) []time.Time {
	var dates []time.Time
	if !w.Active {
		return dates
	}
	for day := startOfDay(start); !day.After(startOfDay(end)); day = day.AddDate(0, 0, 1) {
		if match(len(w.ActiveAssignmentsOn(day))) {
			dates = append(dates, day)
		}
	}
	return dates
}

// AvailabilityScore returns 2, 1, or 0 free slots for the given day. Under
// emergency rules a day at normal capacity still yields one slot. Past days
// and inactive workers always score 0.
func (w *Worker) AvailabilityScore(date time.Time, emergency bool) int {
	if !w.Active || beforeToday(date) {
		return 0
	}
	count := len(w.ActiveAssignmentsOn(date))
	score := DailyAssignmentCapacity - count
	if score <= 0 {
		if emergency && count < EmergencyDailyCapacity {
			return 1
		}
		return 0
	}
	return score
}

// NextFullyAvailableDate returns the first day in [from, from+horizonDays]
// holding zero active assignments. The boolean is false when the worker is
// inactive or the horizon is exhausted.
func (w *Worker) NextFullyAvailableDate(from time.Time, horizonDays int) (time.Time, bool) {
	if !w.Active {
		return time.Time{}, false
	}
	if horizonDays <= 0 {
		horizonDays = DefaultSearchHorizonDays
	}
	for offset := 0; offset <= horizonDays; offset++ {
		day := startOfDay(from).AddDate(0, 0, offset)
		if beforeToday(day) {
			continue
		}
		if w.AvailabilityScore(day, false) == DailyAssignmentCapacity {
			return day, true
		}
	}
	return time.Time{}, false
}

// RankingScore compares workers for assignment ordering; lower is better.
// An inactive worker always ranks last.
func (w *Worker) RankingScore(from time.Time) int {
	if !w.Active {
		return math.MaxInt
	}
	daysOut := DefaultSearchHorizonDays + 1
	if next, ok := w.NextFullyAvailableDate(from, DefaultSearchHorizonDays); ok {
		daysOut = int(next.Sub(startOfDay(from)).Hours() / 24)
	}
	return daysOut*10 + w.UpcomingWorkload(from, DefaultSearchHorizonDays)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func beforeToday(date time.Time) bool {
	return startOfDay(date).Before(startOfDay(time.Now()))
}

func invalidAssignment(message string, details map[string]any) error {
	return apperrors.NewDomainError("INVALID_ASSIGNMENT", message, 422, details)
}

func assignmentNotFound(workOrderNumber string) error {
	return apperrors.NewDomainError("ASSIGNMENT_NOT_FOUND",
		fmt.Sprintf("no active assignment for work order %s", workOrderNumber),
		404, map[string]any{"work_order_number": workOrderNumber})
}
