package midiout

import (
	"fmt"

	"github.com/itohio/gopedal/pkg/pedal"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Port sends Control Change messages to a host MIDI output port.
// A driver must be registered by the caller, e.g. by importing rtmididrv.
type Port struct {
	name string
	send func(midi.Message) error
}

var _ pedal.Emitter = (*Port)(nil)

// NewPort wraps an opened or unopened driver output.
func NewPort(out drivers.Out) (*Port, error) {
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}
	return &Port{name: out.String(), send: send}, nil
}

// OpenPort finds an output port by name.
func OpenPort(name string) (*Port, error) {
	for _, out := range midi.GetOutPorts() {
		if out.String() == name {
			return NewPort(out)
		}
	}
	return nil, fmt.Errorf("output port not found: %s", name)
}

// Ports returns the names of available output ports.
func Ports() []string {
	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// Name returns the port name.
func (p *Port) Name() string {
	return p.name
}

// Send implements pedal.Emitter.
func (p *Port) Send(channel, controller, value uint8) error {
	msg, err := controlChange(channel, controller, value)
	if err != nil {
		return err
	}
	if err := p.send(msg); err != nil {
		return fmt.Errorf("send to %s failed: %w", p.name, err)
	}
	return nil
}
