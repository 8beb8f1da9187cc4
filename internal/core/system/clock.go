package system

import "time"

// Clock is the simulation's notion of time. It advances only when the frame
// loop advances it, so cooldowns, effect expiries, and interpolation targets
// are all pure functions of state compared against Now(); nothing in the core
// sleeps or schedules callbacks.
type Clock struct {
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	return c.now
}

func (c *Clock) Advance(dt time.Duration) {
	c.now = c.now.Add(dt)
}
