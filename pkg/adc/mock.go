package adc

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/gopedal/pkg/pedal"
)

// MockConfig contains simulated input parameters.
type MockConfig struct {
	DomainMax uint16
	Crosstalk float64 // Share of the previous input's level seen by the first conversion after a switch (0-1)
	Noise     float64 // Peak noise in raw units added to every conversion
}

// Mock simulates a multiplexed ADC with per-input levels and enable switches.
// It is safe for concurrent use so a simulation can move levels while a controller samples.
type Mock struct {
	cfg MockConfig

	mu        sync.Mutex
	levels    map[int]float64
	switches  map[int]bool
	last      int
	lastLevel float64
	conv      int
}

var (
	_ Converter    = (*Mock)(nil)
	_ pedal.Switch = (*Mock)(nil)
)

// NewMock creates a mock with all levels at zero and all switches open.
func NewMock(cfg MockConfig) *Mock {
	if cfg.DomainMax == 0 {
		cfg.DomainMax = 1023
	}
	return &Mock{
		cfg:      cfg,
		levels:   make(map[int]float64),
		switches: make(map[int]bool),
		last:     -1,
	}
}

// SetLevel sets the true level of an analog input in raw units.
func (m *Mock) SetLevel(input int, raw float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[input] = raw
}

// SetEnabled closes or opens the enable switch on a digital input.
func (m *Mock) SetEnabled(input int, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.switches[input] = enabled
}

// Enabled implements pedal.Switch.
func (m *Mock) Enabled(input int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.switches[input]
}

// Convert implements Converter.
func (m *Mock) Convert(input int) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	level := m.levels[input]
	v := level
	if input != m.last && m.last >= 0 {
		v = m.cfg.Crosstalk*m.lastLevel + (1-m.cfg.Crosstalk)*level
	}
	m.last = input
	m.lastLevel = level

	if m.cfg.Noise > 0 {
		// Deterministic pseudo noise keeps simulations reproducible.
		m.conv++
		v += m.cfg.Noise * (math.Sin(float64(m.conv)*0.7) + math.Cos(float64(m.conv)*1.3)) * 0.5
	}

	return clamp(v, m.cfg.DomainMax)
}

func clamp(v float64, max uint16) uint16 {
	if v < 0 {
		return 0
	}
	if v > float64(max) {
		return max
	}
	return uint16(math.Round(v))
}

// Sweep moves a level back and forth between lo and hi as a triangle wave.
type Sweep struct {
	Input  int
	Lo, Hi float64
	Period time.Duration
}

// Level returns the sweep level after elapsed time.
func (s Sweep) Level(elapsed time.Duration) float64 {
	if s.Period <= 0 {
		return s.Lo
	}
	phase := math.Mod(elapsed.Seconds()/s.Period.Seconds(), 1)
	tri := 1 - math.Abs(2*phase-1)
	return s.Lo + (s.Hi-s.Lo)*tri
}

// Apply sets the mock level for the sweep input at elapsed time.
func (s Sweep) Apply(m *Mock, elapsed time.Duration) {
	m.SetLevel(s.Input, s.Level(elapsed))
}
