package link

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/gopedal/pkg/adc"
	"github.com/itohio/gopedal/pkg/config"
	"github.com/itohio/gopedal/pkg/diag"
	"github.com/itohio/gopedal/pkg/pedal"
	"github.com/itohio/gopedal/pkg/store"
)

// Mock simulates a pedal board in process: the real pipeline runs over a
// simulated ADC and an in-memory store, and every sent value becomes a report.
type Mock struct {
	cfg *config.Config

	adc        *adc.Mock
	sweeps     []adc.Sweep
	controller *pedal.Controller

	reports   chan diag.Report
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	startTime time.Time
}

// NewMock creates a simulated board. A nil cfg uses config.Default().
func NewMock(cfg *config.Config) (*Mock, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	m := &Mock{
		cfg:     cfg,
		adc:     adc.NewMock(cfg.MockConfig()),
		sweeps:  cfg.Sweeps(),
		reports: make(chan diag.Report, DefaultBufferSize),
	}

	for _, p := range cfg.Pedals {
		m.adc.SetEnabled(p.Enable, true)
	}

	st := store.New(store.NewMemory(int(cfg.Storage.Size)), cfg.Pipeline.DomainMax)
	if _, err := st.Prepare(cfg.Storage.Version); err != nil {
		return nil, fmt.Errorf("failed to prepare simulated storage: %w", err)
	}

	controller, err := pedal.New(cfg.Params(), cfg.Channels(), pedal.Deps{
		Sampler:  adc.NewSource(m.adc, cfg.Pipeline.DomainMax),
		Switch:   m.adc,
		Emitter:  discard{},
		Store:    st,
		Observer: pedal.ObserverFunc(m.observe),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create simulated controller: %w", err)
	}
	m.controller = controller

	return m, nil
}

// Connect starts the simulation.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.done != nil {
		return fmt.Errorf("simulation already finished")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.done = make(chan struct{})
	m.connected = true
	m.startTime = time.Now()

	m.step(m.startTime)
	m.controller.Begin(m.startTime)

	go m.run()

	return nil
}

// Close stops the simulation.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	<-m.done
	m.connected = false
	close(m.reports)

	return nil
}

// Reports returns the channel for reading reports.
func (m *Mock) Reports() <-chan diag.Report {
	return m.reports
}

// IsConnected returns whether the simulation is running.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SetEnabled flips the simulated enable switch of pedal i.
func (m *Mock) SetEnabled(i int, enabled bool) error {
	if i < 0 || i >= len(m.cfg.Pedals) {
		return fmt.Errorf("pedal %d out of range", i)
	}
	m.adc.SetEnabled(m.cfg.Pedals[i].Enable, enabled)
	return nil
}

func (m *Mock) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.Pipeline.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.step(now)
			if err := m.controller.Tick(now); err != nil {
				log.Printf("Simulated tick failed: %v", err)
			}
		}
	}
}

// step moves the simulated pedals to their position at now.
func (m *Mock) step(now time.Time) {
	elapsed := now.Sub(m.startTime)
	for _, s := range m.sweeps {
		s.Apply(m.adc, elapsed)
	}
}

func (m *Mock) observe(ev pedal.Event) {
	if ev.Kind != pedal.EventSent {
		return
	}

	// Send report to channel (non-blocking)
	select {
	case m.reports <- diag.FromEvent(ev):
	default:
		// Channel full, skip
	}
}

// discard accepts every message. The simulated board has no MIDI sink.
type discard struct{}

func (discard) Send(channel, controller, value uint8) error {
	if channel < 1 || channel > 16 {
		return errors.New("invalid midi channel")
	}
	return nil
}
