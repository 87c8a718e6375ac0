package pedal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Controller drives every pedal channel once per tick.
type Controller struct {
	params   Params
	channels []*Channel
	now      func() time.Time
}

// New creates a controller with one channel per config entry.
func New(params Params, configs []ChannelConfig, deps Deps) (*Controller, error) {
	if deps.Sampler == nil || deps.Switch == nil || deps.Emitter == nil || deps.Store == nil {
		return nil, fmt.Errorf("incomplete dependencies")
	}
	if params.Tick <= 0 {
		return nil, fmt.Errorf("invalid tick period: %v", params.Tick)
	}

	channels := make([]*Channel, 0, len(configs))
	for i, cfg := range configs {
		if cfg.MIDIChannel < 1 || cfg.MIDIChannel > 16 {
			return nil, fmt.Errorf("pedal %d: midi channel %d out of range 1-16", i, cfg.MIDIChannel)
		}
		channels = append(channels, NewChannel(i, cfg, params, deps))
	}

	return &Controller{
		params:   params,
		channels: channels,
		now:      time.Now,
	}, nil
}

// Begin restores calibration and initial state of every channel.
func (c *Controller) Begin(now time.Time) {
	for _, ch := range c.channels {
		ch.Begin(now)
	}
}

// Tick runs all channels sequentially. A failing channel does not stop the others.
func (c *Controller) Tick(now time.Time) error {
	var errs []error
	for _, ch := range c.channels {
		if err := ch.Tick(now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush forces pending calibration writes, e.g. before shutdown.
func (c *Controller) Flush(now time.Time) error {
	var errs []error
	for _, ch := range c.channels {
		if err := ch.Flush(now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run ticks at the configured period until ctx is cancelled.
// Ticks that arrive while a previous one is still running are dropped, not queued.
// Tick errors are passed to onError when it is not nil.
func (c *Controller) Run(ctx context.Context, onError func(error)) error {
	ticker := time.NewTicker(c.params.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Tick(c.now()); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// Channels returns the channels in configuration order.
func (c *Controller) Channels() []*Channel {
	return c.channels
}

// Params returns the pipeline parameters.
func (c *Controller) Params() Params {
	return c.params
}
