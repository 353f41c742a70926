package system

import "time"

// Clock is the fixed-timestep frame clock of the simulation.
type Clock struct {
	fixed  float64
	total  float64
	frames int64
}

// NewClock returns a clock ticking at rate frames per second.
func NewClock(rate int) *Clock {
	if rate <= 0 {
		rate = 60
	}
	return &Clock{fixed: 1 / float64(rate)}
}

// Advance counts one frame and returns its delta in seconds.
func (c *Clock) Advance() float64 {
	c.frames++
	c.total += c.fixed
	return c.fixed
}

func (c *Clock) FixedDeltaTime() float64 { return c.fixed }
func (c *Clock) FrameCount() int64       { return c.frames }

// TotalTime is the simulated time elapsed so far.
func (c *Clock) TotalTime() time.Duration {
	return time.Duration(c.total * float64(time.Second))
}

// Interval is the wall-clock period of one frame.
func (c *Clock) Interval() time.Duration {
	return time.Duration(c.fixed * float64(time.Second))
}
