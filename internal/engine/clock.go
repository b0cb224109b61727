package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The engine itself never reads a clock; callers use Today to pick the
// reference date and pass it in.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the current calendar date in loc (time.Local when nil).
func Today(c Clock, loc *time.Location) CalendarDate {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(c.Now().In(loc))
}
