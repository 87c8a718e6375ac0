package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// throttle schedules widget updates on the main Fyne thread, dropping
// updates that arrive sooner than interval after the previous one.
// Fyne widgets cannot be updated directly from goroutines.
type throttle struct {
	interval time.Duration
	now      func() time.Time
	schedule func(func())

	mu   sync.Mutex
	last time.Time
}

func newThrottle(interval time.Duration) *throttle {
	return &throttle{
		interval: interval,
		now:      time.Now,
		schedule: fyne.Do,
	}
}

// Do runs fn on the main thread unless an update ran within the interval.
// It reports whether fn was scheduled.
func (t *throttle) Do(fn func()) bool {
	if fn == nil {
		return false
	}

	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return false
	}
	t.last = now
	t.mu.Unlock()

	t.schedule(fn)
	return true
}
