package clock

import "time"

// Clock allows injecting time in services.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystem returns a clock backed by time.Now in loc.
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// Today returns the current calendar day of c as "YYYY-MM-DD".
func Today(c Clock) string {
	return c.Now().Format("2006-01-02")
}

// DaysAgo returns the calendar day n days before today as "YYYY-MM-DD".
func DaysAgo(c Clock, n int) string {
	return c.Now().AddDate(0, 0, -n).Format("2006-01-02")
}
