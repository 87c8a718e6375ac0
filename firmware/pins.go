//go:build tinygo

package main

import (
	"machine"

	"github.com/itohio/gopedal/pkg/pedal"
)

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 10   // Pipeline works in 10-bit units (0-1023)

	// machine.ADC.Get scales every reading to 16 bits
	ADC_SHIFT = 16 - ADC_RESOLUTION

	// Calibration storage schema. Bump to discard stored records after a layout change.
	STORAGE_VERSION = 1
	STORAGE_SIZE    = 1024

	// USB-MIDI virtual cable
	MIDI_CABLE = 0
)

// Analog input identifiers index analogPins, enable identifiers index enablePins.
var (
	analogPins = []machine.Pin{machine.A0, machine.A1, machine.A2}
	enablePins = []machine.Pin{machine.D5, machine.D6}
)

// pedals is the board layout: expression pedal on A0 and a general purpose pedal on A2.
var pedals = []pedal.ChannelConfig{
	{Name: "expression", AnalogInput: 0, EnableInput: 0, Controller: 11, MIDIChannel: 1, Address: 1},
	{Name: "general1", AnalogInput: 2, EnableInput: 1, Controller: 16, MIDIChannel: 1, Address: 5},
}
