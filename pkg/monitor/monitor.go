package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/itohio/gopedal/pkg/diag"
)

// Snapshot is a copy of the per-pedal history, keyed by pedal index.
// Each history is ordered oldest first.
type Snapshot map[int][]diag.Report

// Monitor keeps a time window of reports per pedal.
// Removal is based on timestamp, not number of reports. The window is
// measured back from the newest report of any pedal, so a pedal that stops
// sending drains out of the window as the others keep reporting.
type Monitor struct {
	window time.Duration

	histories map[int][]diag.Report
	newest    time.Time
	mu        sync.RWMutex

	callbacks []func(Snapshot)
	cbMu      sync.RWMutex

	// Set when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a monitor keeping window worth of reports.
func New(window time.Duration) *Monitor {
	return &Monitor{
		window:    window,
		histories: make(map[int][]diag.Report),
	}
}

// ProcessReports consumes reports until the input channel closes.
// After that no further callbacks are sent until ResetShutdown.
func (m *Monitor) ProcessReports(input <-chan diag.Report) {
	for r := range input {
		m.Process(r)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// Process adds one report and notifies callbacks.
func (m *Monitor) Process(r diag.Report) {
	m.mu.Lock()
	if r.Time.After(m.newest) {
		m.newest = r.Time
	}
	m.histories[r.Pedal] = append(m.histories[r.Pedal], r)

	cutoff := m.newest.Add(-m.window)
	for p, h := range m.histories {
		i := sort.Search(len(h), func(i int) bool { return h[i].Time.After(cutoff) })
		if i == len(h) {
			delete(m.histories, p)
			continue
		}
		if i > 0 {
			m.histories[p] = h[i:]
		}
	}

	shouldNotify := !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// History returns a copy of one pedal's reports, oldest first.
func (m *Monitor) History(pedal int) []diag.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h := m.histories[pedal]
	result := make([]diag.Report, len(h))
	copy(result, h)
	return result
}

// Latest returns the newest report of a pedal.
func (m *Monitor) Latest(pedal int) (diag.Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h := m.histories[pedal]
	if len(h) == 0 {
		return diag.Report{}, false
	}
	return h[len(h)-1], true
}

// Pedals returns the indices of pedals with reports in the window, ascending.
func (m *Monitor) Pedals() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pedalsLocked()
}

func (m *Monitor) pedalsLocked() []int {
	pedals := make([]int, 0, len(m.histories))
	for p := range m.histories {
		pedals = append(pedals, p)
	}
	sort.Ints(pedals)
	return pedals
}

// Snapshot returns a copy of every history.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make(Snapshot, len(m.histories))
	for p, h := range m.histories {
		c := make([]diag.Report, len(h))
		copy(c, h)
		snap[p] = c
	}
	return snap
}

// OnUpdate registers a callback invoked after every processed report.
// The callback should copy data quickly and return as fast as possible.
func (m *Monitor) OnUpdate(callback func(Snapshot)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown allows callbacks again, e.g. before reconnecting a device.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// Clear drops all history.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories = make(map[int][]diag.Report)
	m.newest = time.Time{}
}

// notifyCallbacks copies the data under the read lock and invokes callbacks without locks.
func (m *Monitor) notifyCallbacks() {
	m.cbMu.RLock()
	callbacks := make([]func(Snapshot), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	if len(callbacks) == 0 {
		return
	}

	snap := m.Snapshot()
	for _, cb := range callbacks {
		if cb != nil {
			cb(snap)
		}
	}
}
