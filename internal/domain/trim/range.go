// Package trim holds the in/out selection of the loaded clip and the pointer
// state machine that edits it.
package trim

import (
	"math"
	"sync"
)

// MinWindow is the smallest selectable share of the clip duration.
const MinWindow = 0.05

// Range is the selected [start, end] window expressed as fractions of the
// clip duration. Setters clamp instead of failing, so a Range never holds an
// inverted or sub-minimum window.
type Range struct {
	mu    sync.RWMutex
	start float64
	end   float64
}

func NewRange() *Range {
	return &Range{start: 0, end: 1}
}

// SetStart moves the in-point, clamped to [0, end-MinWindow].
func (r *Range) SetStart(fraction float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := math.Max(clamp(fraction, 0, r.end-MinWindow), 0)
	// end-MinWindow can round up by an ulp; step down until the gap holds.
	for start > 0 && r.end-start < MinWindow {
		start = math.Max(math.Nextafter(start, math.Inf(-1)), 0)
	}
	r.start = start
	return r.start
}

// SetEnd moves the out-point, clamped to [start+MinWindow, 1].
func (r *Range) SetEnd(fraction float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	end := math.Min(clamp(fraction, r.start+MinWindow, 1), 1)
	for end < 1 && end-r.start < MinWindow {
		end = math.Min(math.Nextafter(end, math.Inf(1)), 1)
	}
	r.end = end
	return r.end
}

// Reset selects the whole clip. Call it when metadata for new media arrives.
func (r *Range) Reset() {
	r.mu.Lock()
	r.start, r.end = 0, 1
	r.mu.Unlock()
}

func (r *Range) Start() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.start
}

func (r *Range) End() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.end
}

func (r *Range) Fractions() (start, end float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.start, r.end
}

// Window converts the selection into seconds for a clip of the given duration.
func (r *Range) Window(duration float64) Window {
	start, end := r.Fractions()
	return Window{Start: start * duration, End: end * duration}
}

type Window struct {
	Start float64
	End   float64
}

func (w Window) Duration() float64 { return w.End - w.Start }

func clamp(v, lo, hi float64) float64 {
	// NaN would slip through both comparisons.
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
