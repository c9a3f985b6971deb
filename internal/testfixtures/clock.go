package testfixtures

import (
	"sync"
	"time"

	"github.com/immersion-facile/convention-core/internal/calendar"
)

// Clock is a controllable time source. Conventions care about calendar days
// more than instants, so it also moves and reports in whole days.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start.UTC()}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection into services.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Today returns the calendar date of the current instant.
func (c *Clock) Today() calendar.Date {
	return calendar.FromTime(c.Now())
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// AdvanceDays moves the clock n calendar days, keeping the time of day.
func (c *Clock) AdvanceDays(n int) calendar.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.AddDate(0, 0, n)
	return calendar.FromTime(c.current)
}

// SetDate moves the clock to date, keeping the time of day.
func (c *Clock) SetDate(date calendar.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, m, s := c.current.Clock()
	c.current = time.Date(date.Year(), date.Month(), date.Day(), h, m, s, c.current.Nanosecond(), time.UTC)
}
