// Package playback loops preview playback inside the selected trim window.
//
// The Controller samples the playhead once per frame while playing and pulls
// it back to the in-point whenever it reaches the out-point. Frames are
// requested from a Scheduler so the loop can be driven by a display refresh,
// a timer, or a test.
package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/mediashop/internal/domain/trim"
)

// ErrInterrupted marks a start request that was superseded, e.g. by a pause
// or seek issued before playback actually began. It is not a real failure.
var ErrInterrupted = errors.New("playback start interrupted")

type Player interface {
	CurrentTime() float64
	Seek(seconds float64)
	Start(ctx context.Context) error
	Pause()
	SetRate(rate float64)
}

// Scheduler runs fn once, on the next frame.
type Scheduler interface {
	Schedule(fn func())
}

type State struct {
	Duration float64
	Current  float64
	Rate     float64
	Playing  bool
}

type Controller struct {
	mu       sync.Mutex
	player   Player
	sched    Scheduler
	rng      *trim.Range
	log      hclog.Logger
	duration float64
	rate     float64
	playing  bool
	armed    bool
	loops    int
}

func NewController(player Player, sched Scheduler, rng *trim.Range, log hclog.Logger) *Controller {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Controller{player: player, sched: sched, rng: rng, log: log, rate: 1}
}

// Load records the duration of a newly loaded asset and stops playback.
func (c *Controller) Load(duration float64) {
	if duration < 0 {
		duration = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		c.player.Pause()
		c.playing = false
	}
	c.duration = duration
	c.loops = 0
	c.player.Seek(0)
}

func (c *Controller) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player.Seek(seconds)
}

func (c *Controller) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
	c.player.SetRate(rate)
}

func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Loops reports how many times playback wrapped back to the in-point.
func (c *Controller) Loops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loops
}

// Position is the playhead as seen through the trim window.
func (c *Controller) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	in, out := c.bounds()
	cur := c.player.CurrentTime()
	if c.playing && (cur >= out || cur < in) {
		return in
	}
	return cur
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Duration: c.duration,
		Current:  c.player.CurrentTime(),
		Rate:     c.rate,
		Playing:  c.playing,
	}
}

func (c *Controller) Toggle(ctx context.Context) error {
	if c.Playing() {
		c.Pause()
		return nil
	}
	return c.Play(ctx)
}

// Play resumes playback, first rewinding to the in-point when the playhead
// sits outside the window.
func (c *Controller) Play(ctx context.Context) error {
	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return nil
	}
	in, out := c.bounds()
	if cur := c.player.CurrentTime(); cur >= out || cur < in {
		c.player.Seek(in)
	}
	c.mu.Unlock()

	if err := c.player.Start(ctx); err != nil {
		if errors.Is(err, ErrInterrupted) {
			c.log.Debug("playback start interrupted", "error", err)
			return nil
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = true
	c.arm()
	return nil
}

// Pause stops playback. The frame loop notices on its next tick and stops
// re-arming.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.playing = false
	c.player.Pause()
}

// arm must be called with c.mu held.
func (c *Controller) arm() {
	if c.armed {
		return
	}
	c.armed = true
	c.sched.Schedule(c.tick)
}

func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = false
	if !c.playing {
		return
	}
	in, out := c.bounds()
	if cur := c.player.CurrentTime(); cur >= out || cur < in {
		c.player.Seek(in)
		if cur >= out {
			c.loops++
			c.log.Trace("looped to in-point", "in", in, "out", out)
		}
	}
	c.arm()
}

// bounds must be called with c.mu held.
func (c *Controller) bounds() (in, out float64) {
	w := c.rng.Window(c.duration)
	return w.Start, w.End
}
