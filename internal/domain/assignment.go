package domain

import "time"

// AssignmentWindow is the nominal duration a single work order occupies.
const AssignmentWindow = 4 * time.Hour

// Assignment is one booking held by a worker, keyed by work-order number.
// Completed assignments are kept for history but no longer count toward
// daily capacity.
type Assignment struct {
	WorkOrderNumber string
	ScheduledDate   time.Time
	Notes           string
	Completed       bool
	Successful      bool
	CompletionNotes string
}

// WindowEnd returns the end of the assignment's nominal work window.
func (a Assignment) WindowEnd() time.Time {
	return a.ScheduledDate.Add(AssignmentWindow)
}

// Overlaps reports whether two 4-hour work windows intersect.
func (a Assignment) Overlaps(start time.Time) bool {
	end := start.Add(AssignmentWindow)
	return a.ScheduledDate.Before(end) && start.Before(a.WindowEnd())
}

// SameDay reports whether the assignment falls on the given calendar day.
func (a Assignment) SameDay(date time.Time) bool {
	y1, m1, d1 := a.ScheduledDate.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
