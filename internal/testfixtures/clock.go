package testfixtures

import (
	"sync"
	"time"

	"github.com/example/service-order-scheduler/internal/recurrence"
)

// Clock is a manually driven time source. The board derives its default week
// from it, so tests usually move it by whole days or onto a weekday.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts the clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// Now returns the instant the clock points at.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc adapts the clock to constructors taking func() time.Time. A nil clock
// falls back to the wall clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceDays moves the clock by whole calendar days, keeping the time of day.
func (c *Clock) AdvanceDays(days int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, days)
	return c.now
}

// MoveTo jumps to the given weekday of the current Sunday-first week.
func (c *Clock) MoveTo(day recurrence.Weekday) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if day.Valid() {
		c.now = c.now.AddDate(0, 0, int(day)-int(c.now.Weekday()))
	}
	return c.now
}
