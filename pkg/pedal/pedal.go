package pedal

import (
	"errors"
	"time"
)

const (
	// MaxValue is the largest MIDI data value.
	MaxValue = 127
	// NeverSent marks a channel that has not emitted anything yet.
	NeverSent = -1
)

// ErrNoCalibration is returned by a Store when no valid calibration record exists at an address.
var ErrNoCalibration = errors.New("no calibration")

// Params holds the pipeline constants shared by every channel.
type Params struct {
	DomainMax  uint16        // Largest raw value produced by one conversion (1023 for a 10-bit ADC)
	Alpha      float32       // EMA smoothing factor (0,1]
	Deadzone   int           // Raw units trimmed from each end of the learned range
	Hysteresis float32       // Minimum change in mapped units before a new value is sent
	Quiescence time.Duration // Quiet time after the last range change before calibration is saved
	Tick       time.Duration // Polling period of the outer loop
}

// DefaultParams returns the parameters of the reference board.
func DefaultParams() Params {
	return Params{
		DomainMax:  1023,
		Alpha:      0.15,
		Deadzone:   15,
		Hysteresis: 0.6,
		Quiescence: 30 * time.Second,
		Tick:       5 * time.Millisecond,
	}
}

// ChannelConfig describes one physical pedal.
type ChannelConfig struct {
	Name        string
	AnalogInput int   // Analog input identifier passed to the Sampler
	EnableInput int   // Digital input identifier passed to the Switch
	Controller  uint8 // MIDI controller number
	MIDIChannel uint8 // MIDI channel 1-16
	Address     int   // Persistence address of the calibration record
}

// Calibration is the learned raw travel range of a pedal.
type Calibration struct {
	Min int
	Max int
}

// Unlearned returns the sentinel calibration that any real sample overrides.
func Unlearned(domainMax uint16) Calibration {
	return Calibration{Min: int(domainMax), Max: 0}
}

// Sampler reads one analog input with crosstalk compensation.
type Sampler interface {
	Sample(input int) uint16
}

// Switch reports whether the enable input of a pedal is closed.
type Switch interface {
	Enabled(input int) bool
}

// Emitter transmits a Control Change message. channel is 1-based.
type Emitter interface {
	Send(channel, controller, value uint8) error
}

// Store persists calibration records.
type Store interface {
	LoadCalibration(addr int) (Calibration, error)
	SaveCalibration(addr int, cal Calibration) error
}

// Deps bundles the capabilities a Controller needs.
type Deps struct {
	Sampler  Sampler
	Switch   Switch
	Emitter  Emitter
	Store    Store
	Observer Observer // optional
}
