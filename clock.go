package galaxy

import (
	"time"
)

// Clock tracks time since the render loop started, like a frame clock.
type Clock struct {
	now   func() time.Time
	start time.Time
	last  time.Time

	Dt time.Duration
}

func NewClock() *Clock {
	return NewClockWith(time.Now)
}

// NewClockWith uses now as the time source; tests pass a fake.
func NewClockWith(now func() time.Time) *Clock {
	t := now()
	return &Clock{now: now, start: t, last: t}
}

// Tick advances the clock and returns elapsed seconds since start.
func (c *Clock) Tick() float32 {
	t := c.now()
	c.Dt = t.Sub(c.last)
	c.last = t
	return float32(t.Sub(c.start).Seconds())
}

func (c *Clock) Elapsed() time.Duration {
	return c.last.Sub(c.start)
}
