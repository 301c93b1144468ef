package domain

import "time"

// ExistingBooking is the read-only snapshot of who is booked on a unit for a
// given day. It is recomputed from Request and Worker state on every
// scheduling decision; nothing caches it.
type ExistingBooking struct {
	RequestID            string
	PropertyCode         string
	UnitNumber           string
	WorkerEmail          string
	WorkerSpecialization Specialization
	WorkOrderNumber      string
	ScheduledDate        time.Time
	Active               bool
	Emergency            bool
}

// SameDay reports whether the booking falls on the given calendar day.
func (b ExistingBooking) SameDay(date time.Time) bool {
	y1, m1, d1 := b.ScheduledDate.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
