package midiout

import (
	"fmt"
	"io"

	"github.com/itohio/gopedal/pkg/pedal"
	"gitlab.com/gomidi/midi/v2"
)

// CINControlChange is the USB-MIDI code index number of a Control Change event.
const CINControlChange = 0x0B

// Flusher is implemented by transports that buffer outgoing packets.
type Flusher interface {
	Flush() error
}

// Packet encodes a Control Change as a 4-byte USB-MIDI event packet.
// channel is 1-based; controller and value are masked to 7 bits.
func Packet(cable, channel, controller, value uint8) ([4]byte, error) {
	msg, err := controlChange(channel, controller, value)
	if err != nil {
		return [4]byte{}, err
	}
	return [4]byte{(cable&0x0F)<<4 | CINControlChange, msg[0], msg[1], msg[2]}, nil
}

func controlChange(channel, controller, value uint8) (midi.Message, error) {
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("midi channel %d out of range 1-16", channel)
	}
	return midi.ControlChange(channel-1, controller&0x7F, value&0x7F), nil
}

// USB sends each Control Change as one USB-MIDI packet and flushes immediately.
type USB struct {
	w     io.Writer
	cable uint8
}

var _ pedal.Emitter = (*USB)(nil)

// NewUSB creates an emitter writing packets for the given virtual cable to w.
func NewUSB(w io.Writer, cable uint8) *USB {
	return &USB{w: w, cable: cable}
}

// Send implements pedal.Emitter.
func (u *USB) Send(channel, controller, value uint8) error {
	pkt, err := Packet(u.cable, channel, controller, value)
	if err != nil {
		return err
	}
	if _, err := u.w.Write(pkt[:]); err != nil {
		return fmt.Errorf("failed to write midi packet: %w", err)
	}
	if f, ok := u.w.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush midi transport: %w", err)
		}
	}
	return nil
}
