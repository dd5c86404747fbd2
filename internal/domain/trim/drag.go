package trim

import (
	"fmt"
	"math"
	"sync"
)

type Handle int

const (
	HandleStart Handle = iota
	HandleEnd
)

type Mode int

const (
	Idle Mode = iota
	DraggingStart
	DraggingEnd
)

func (m Mode) String() string {
	switch m {
	case DraggingStart:
		return "dragging-start"
	case DraggingEnd:
		return "dragging-end"
	default:
		return "idle"
	}
}

// Track is the on-screen geometry of the timeline the handles slide along.
type Track struct {
	Left  float64
	Width float64
}

// Position normalizes a pointer x coordinate into [0, 1].
func (t Track) Position(x float64) float64 {
	if t.Width <= 0 {
		return 0
	}
	return clamp((x-t.Left)/t.Width, 0, 1)
}

// Transport is the slice of playback the drag needs: the clip duration and a
// way to move the playhead.
type Transport interface {
	Duration() float64
	Seek(seconds float64)
}

// Readout is what the trim window indicator and the time labels show.
type Readout struct {
	LeftPct   float64
	WidthPct  float64
	StartText string
	EndText   string
}

type Drag struct {
	mu        sync.Mutex
	rng       *Range
	transport Transport
	track     Track
	mode      Mode
	onUpdate  func(Readout)
}

func NewDrag(rng *Range, transport Transport, track Track) *Drag {
	return &Drag{rng: rng, transport: transport, track: track}
}

// OnUpdate registers a callback fired with a fresh Readout after every move.
func (d *Drag) OnUpdate(fn func(Readout)) {
	d.mu.Lock()
	d.onUpdate = fn
	d.mu.Unlock()
}

func (d *Drag) SetTrack(t Track) {
	d.mu.Lock()
	d.track = t
	d.mu.Unlock()
}

func (d *Drag) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// PointerDown starts dragging the given handle. The returned bool reports
// that the event was consumed and must not reach the seek bar underneath.
func (d *Drag) PointerDown(h Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch h {
	case HandleStart:
		d.mode = DraggingStart
	case HandleEnd:
		d.mode = DraggingEnd
	default:
		return false
	}
	return true
}

// PointerMove applies a pointer position to the handle being dragged. It
// reports false when no drag is in progress.
func (d *Drag) PointerMove(x float64) (Readout, bool) {
	d.mu.Lock()
	mode := d.mode
	pos := d.track.Position(x)
	fn := d.onUpdate
	d.mu.Unlock()

	switch mode {
	case DraggingStart:
		start := d.rng.SetStart(pos)
		if d.transport != nil {
			d.transport.Seek(start * d.duration())
		}
	case DraggingEnd:
		d.rng.SetEnd(pos)
	default:
		return Readout{}, false
	}

	out := d.Readout()
	if fn != nil {
		fn(out)
	}
	return out, true
}

// PointerUp ends any drag. It is bound document-wide since the pointer may
// leave the track mid-drag.
func (d *Drag) PointerUp() {
	d.mu.Lock()
	d.mode = Idle
	d.mu.Unlock()
}

func (d *Drag) Readout() Readout {
	start, end := d.rng.Fractions()
	dur := d.duration()
	return Readout{
		LeftPct:   start * 100,
		WidthPct:  (end - start) * 100,
		StartText: FormatClock(start * dur),
		EndText:   FormatClock(end * dur),
	}
}

func (d *Drag) duration() float64 {
	if d.transport == nil {
		return 0
	}
	return d.transport.Duration()
}

// FormatClock renders seconds as m:ss.t for the handle labels.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	tenths := int64(math.Round(seconds * 10))
	m := tenths / 600
	s := (tenths % 600) / 10
	t := tenths % 10
	return fmt.Sprintf("%d:%02d.%d", m, s, t)
}
