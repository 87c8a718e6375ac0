package scope

import (
	"image/color"
	"sort"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gopedal/pkg/diag"
	"github.com/itohio/gopedal/pkg/monitor"
)

// traceColors cycles per pedal.
var traceColors = []color.RGBA{
	{R: 255, G: 165, B: 0, A: 255},   // Orange
	{R: 100, G: 200, B: 255, A: 255}, // Light blue
	{R: 140, G: 230, B: 120, A: 255}, // Green
	{R: 230, G: 110, B: 200, A: 255}, // Pink
}

func traceColor(pedal int) color.RGBA {
	return traceColors[pedal%len(traceColors)]
}

// trace is the display copy of one pedal's history.
type trace struct {
	pedal   int
	reports []diag.Report
}

// ScopeWidget is a custom Fyne widget that plots the sent values of every pedal over time.
type ScopeWidget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu     sync.RWMutex
	traces []trace

	// Time axis
	xMin, xMax time.Time

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget showing window worth of history.
func New(window time.Duration) *ScopeWidget {
	s := &ScopeWidget{
		window:           window,
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData updates the widget with a monitor snapshot.
// This should be called from the monitor callback using fyne.Do().
func (s *ScopeWidget) UpdateData(snap monitor.Snapshot) {
	s.mu.Lock()
	s.setData(snap)
	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// SetWindow changes the minimum time span shown.
func (s *ScopeWidget) SetWindow(window time.Duration) {
	s.mu.Lock()
	s.window = window
	s.updateTimeAxis()
	s.mu.Unlock()

	s.Refresh()
}

// setData downsamples the snapshot into the display traces, reusing their buffers.
func (s *ScopeWidget) setData(snap monitor.Snapshot) {
	pedals := make([]int, 0, len(snap))
	for p := range snap {
		pedals = append(pedals, p)
	}
	sort.Ints(pedals)

	old := s.traces
	s.traces = make([]trace, 0, len(pedals))
	for i, p := range pedals {
		var dst []diag.Report
		if i < len(old) {
			dst = old[i].reports
		}
		s.traces = append(s.traces, trace{
			pedal:   p,
			reports: monitor.Downsample(dst, snap[p], s.maxDisplayPoints),
		})
	}

	s.updateTimeAxis()
}

// updateTimeAxis spans the newest window of data, at least s.window wide.
func (s *ScopeWidget) updateTimeAxis() {
	var newest, oldest time.Time
	for _, tr := range s.traces {
		if len(tr.reports) == 0 {
			continue
		}
		first, last := tr.reports[0].Time, tr.reports[len(tr.reports)-1].Time
		if oldest.IsZero() || first.Before(oldest) {
			oldest = first
		}
		if last.After(newest) {
			newest = last
		}
	}

	if newest.IsZero() {
		s.xMin = time.Now()
		s.xMax = s.xMin.Add(s.window)
		return
	}

	s.xMin = oldest
	s.xMax = newest
	// Ensure minimum window
	if s.xMax.Sub(s.xMin) < s.window {
		s.xMax = s.xMin.Add(s.window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
