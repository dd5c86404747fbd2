package playback

import (
	"context"
	"sync"
	"time"
)

// Clock is a Player without a decoder: the playhead advances with wall time
// scaled by the rate, and stops at the clip duration.
type Clock struct {
	mu       sync.Mutex
	now      func() time.Time
	duration float64
	rate     float64
	base     float64
	since    time.Time
	running  bool
}

func NewClock(duration float64) *Clock {
	return &Clock{now: time.Now, duration: duration, rate: 1}
}

func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *Clock) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.clampPos(seconds)
	c.since = c.now()
}

func (c *Clock) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.since = c.now()
	c.running = true
	return nil
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.position()
	c.running = false
}

func (c *Clock) SetRate(rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.position()
	c.since = c.now()
	c.rate = rate
}

func (c *Clock) position() float64 {
	if !c.running {
		return c.base
	}
	elapsed := c.now().Sub(c.since).Seconds() * c.rate
	return c.clampPos(c.base + elapsed)
}

func (c *Clock) clampPos(v float64) float64 {
	if v < 0 {
		return 0
	}
	if c.duration > 0 && v > c.duration {
		return c.duration
	}
	return v
}
