package playback

import (
	"sync"
	"time"
)

// FrameInterval approximates one display refresh.
const FrameInterval = time.Second / 60

// FrameScheduler runs each scheduled callback after a fixed delay on a
// timer goroutine. It is the headless stand-in for a display refresh.
type FrameScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

func NewFrameScheduler(interval time.Duration) *FrameScheduler {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &FrameScheduler{interval: interval, timers: map[*time.Timer]struct{}{}}
}

func (s *FrameScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		delete(s.timers, t)
		s.mu.Unlock()
		fn()
	})
	s.timers[t] = struct{}{}
}

// Close drops pending frames and ignores further requests.
func (s *FrameScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
