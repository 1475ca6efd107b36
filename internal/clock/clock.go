package clock

import "time"

// DayFormat is the calendar-day key format used across the check-in state.
const DayFormat = "2006-01-02"

// Clock abstracts wall-clock access so the engine and intake hook can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock { return systemClock{} }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// DayKey renders the calendar date of t in the reference location.
// The day a check-in belongs to is a property of the system's configured
// timezone, not of any participant's local time.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayFormat)
}
