package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow allows at most Limit events per key within any rolling Window.
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	events map[string][]time.Time
}

// NewSlidingWindow creates a limiter. A limit <= 0 disables limiting.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		events: make(map[string][]time.Time),
	}
}

// WithClock replaces the time source, used by tests.
func (w *SlidingWindow) WithClock(now func() time.Time) *SlidingWindow {
	w.now = now
	return w
}

// Allow records an event for key and reports whether it fits in the window.
// Rejected events are not recorded.
func (w *SlidingWindow) Allow(key string) bool {
	if w.limit <= 0 {
		return true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	recent := w.prune(key, now)
	if len(recent) >= w.limit {
		return false
	}
	w.events[key] = append(recent, now)
	return true
}

// Remaining returns how many events key may still record in the current window.
func (w *SlidingWindow) Remaining(key string) int {
	if w.limit <= 0 {
		return -1
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.limit - len(w.prune(key, w.now()))
}

// Reset forgets all events for key.
func (w *SlidingWindow) Reset(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.events, key)
}

func (w *SlidingWindow) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-w.window)
	events := w.events[key]
	i := 0
	for i < len(events) && !events[i].After(cutoff) {
		i++
	}
	events = events[i:]
	if len(events) == 0 {
		delete(w.events, key)
		return nil
	}
	w.events[key] = events
	return events
}
