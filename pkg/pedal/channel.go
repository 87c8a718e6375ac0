package pedal

import (
	"errors"
	"fmt"
	"time"
)

// State is the enable state of a channel.
type State int

const (
	StateDisabled State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "disabled"
}

// Channel runs the signal pipeline of one pedal.
type Channel struct {
	index  int
	cfg    ChannelConfig
	params Params
	deps   Deps

	tracker  *Tracker
	smoother *Smoother
	gate     Gate

	state     State
	lastSent  int
	dirty     bool
	changedAt time.Time
}

// NewChannel creates a channel in the unlearned, disabled state.
func NewChannel(index int, cfg ChannelConfig, params Params, deps Deps) *Channel {
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	return &Channel{
		index:    index,
		cfg:      cfg,
		params:   params,
		deps:     deps,
		tracker:  NewTracker(params.DomainMax, params.Deadzone),
		smoother: NewSmoother(params.Alpha),
		gate:     NewGate(params.Hysteresis),
		state:    StateDisabled,
		lastSent: NeverSent,
	}
}

// Begin restores the persisted calibration and reads the initial switch state.
// An invalid or missing record leaves the channel unlearned.
func (c *Channel) Begin(now time.Time) {
	cal, err := c.deps.Store.LoadCalibration(c.cfg.Address)
	if err != nil {
		c.notify(now, EventRelearn, NeverSent, err)
	} else {
		c.tracker.Restore(cal)
		c.notify(now, EventRestored, NeverSent, nil)
	}

	if c.deps.Switch.Enabled(c.cfg.EnableInput) {
		c.state = StateActive
		c.notify(now, EventEnabled, NeverSent, nil)
	}
}

// Tick runs one polling period. A disabled channel does nothing at all.
func (c *Channel) Tick(now time.Time) error {
	if !c.updateState(now) {
		return nil
	}

	raw := c.deps.Sampler.Sample(c.cfg.AnalogInput)
	if c.tracker.Observe(int(raw)) {
		c.dirty = true
		c.changedAt = now
	}
	smoothed := c.smoother.Update(raw)

	var err error
	if c.tracker.Ready() {
		f, n := Map(smoothed, c.tracker.Calibration(), c.params.Deadzone)
		if c.gate.ShouldSend(f, n, c.lastSent) {
			err = c.send(now, n)
		}
	}

	return errors.Join(err, c.persist(now, false))
}

// Flush saves a pending calibration regardless of the quiescence interval.
func (c *Channel) Flush(now time.Time) error {
	return c.persist(now, true)
}

func (c *Channel) updateState(now time.Time) bool {
	enabled := c.deps.Switch.Enabled(c.cfg.EnableInput)
	switch {
	case enabled && c.state == StateDisabled:
		c.state = StateActive
		c.notify(now, EventEnabled, NeverSent, nil)
	case !enabled && c.state == StateActive:
		c.state = StateDisabled
		c.notify(now, EventDisabled, NeverSent, nil)
	}
	return enabled
}

func (c *Channel) send(now time.Time, value int) error {
	if err := c.deps.Emitter.Send(c.cfg.MIDIChannel, c.cfg.Controller, uint8(value)); err != nil {
		err = fmt.Errorf("pedal %d: send cc %d: %w", c.index, c.cfg.Controller, err)
		c.notify(now, EventError, value, err)
		return err
	}
	c.lastSent = value
	c.notify(now, EventSent, value, nil)
	return nil
}

// persist writes the calibration once it has been quiet for the quiescence interval.
// The dirty flag is cleared after every attempt; a failed write is not retried
// until the range changes again.
func (c *Channel) persist(now time.Time, force bool) error {
	if !c.dirty {
		return nil
	}
	if !force && now.Sub(c.changedAt) < c.params.Quiescence {
		return nil
	}
	c.dirty = false

	if err := c.deps.Store.SaveCalibration(c.cfg.Address, c.tracker.Calibration()); err != nil {
		err = fmt.Errorf("pedal %d: save calibration: %w", c.index, err)
		c.notify(now, EventError, NeverSent, err)
		return err
	}
	c.notify(now, EventSaved, NeverSent, nil)
	return nil
}

func (c *Channel) notify(now time.Time, kind EventKind, value int, err error) {
	c.deps.Observer.Observe(Event{
		Kind:        kind,
		Time:        now,
		Channel:     c.index,
		Name:        c.cfg.Name,
		Controller:  c.cfg.Controller,
		MIDIChannel: c.cfg.MIDIChannel,
		Value:       value,
		Calibration: c.tracker.Calibration(),
		Err:         err,
	})
}

// Index returns the position of the channel in its controller.
func (c *Channel) Index() int { return c.index }

// Config returns the channel configuration.
func (c *Channel) Config() ChannelConfig { return c.cfg }

// State returns the current enable state.
func (c *Channel) State() State { return c.state }

// Calibration returns the learned range.
func (c *Channel) Calibration() Calibration { return c.tracker.Calibration() }

// Ready reports whether the channel is calibrated enough to emit.
func (c *Channel) Ready() bool { return c.tracker.Ready() }

// Smoothed returns the current filter output.
func (c *Channel) Smoothed() float32 { return c.smoother.Value() }

// LastSent returns the last emitted value or NeverSent.
func (c *Channel) LastSent() int { return c.lastSent }

// Dirty reports whether a calibration change is waiting to be saved.
func (c *Channel) Dirty() bool { return c.dirty }
