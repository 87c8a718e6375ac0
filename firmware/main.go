//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"machine/usb/adc/midi"
	"time"

	"github.com/itohio/gopedal/pkg/adc"
	"github.com/itohio/gopedal/pkg/diag"
	"github.com/itohio/gopedal/pkg/midiout"
	"github.com/itohio/gopedal/pkg/pedal"
	"github.com/itohio/gopedal/pkg/store"
)

func main() {
	params := pedal.DefaultParams()

	conv := newConverter(analogPins)
	sw := newSwitches(enablePins)

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	flash, err := newFlashMedium(STORAGE_SIZE)
	if err != nil {
		println("flash:", err.Error())
	}

	var st pedal.Store = noStore{}
	if flash != nil {
		s := store.New(flash, params.DomainMax)
		if migrated, err := s.Prepare(STORAGE_VERSION); err != nil {
			println("storage:", err.Error())
		} else {
			if migrated {
				println("storage version changed, relearning")
			}
			st = s
		}
	}

	controller, err := pedal.New(params, pedals, pedal.Deps{
		Sampler: adc.NewSource(conv, params.DomainMax),
		Switch:  sw,
		Emitter: midiout.NewUSB(midi.Port(), MIDI_CABLE),
		Store:   st,
		Observer: diag.Multi{
			diag.NewWriter(machine.Serial),
			ledObserver{led: machine.LED},
		},
	})
	if err != nil {
		// Only reachable with a broken pin table; nothing to run.
		for {
			println("config:", err.Error())
			time.Sleep(time.Second)
		}
	}

	controller.Begin(time.Now())
	controller.Run(context.Background(), nil)
}

// converter reads the on-chip ADC.
type converter struct {
	adcs []machine.ADC
}

func newConverter(pins []machine.Pin) *converter {
	machine.InitADC()

	c := &converter{adcs: make([]machine.ADC, len(pins))}
	for i, pin := range pins {
		c.adcs[i] = machine.ADC{Pin: pin}
		c.adcs[i].Configure(machine.ADCConfig{
			Reference:  ADC_REFERENCE_MV,
			Resolution: ADC_RESOLUTION,
		})
	}
	return c
}

func (c *converter) Convert(input int) uint16 {
	if input < 0 || input >= len(c.adcs) {
		return 0
	}
	return c.adcs[input].Get() >> ADC_SHIFT
}

// switches reads the enable inputs. The pull-up keeps an input high while a
// pedal is plugged in; a shorted jack pulls it low and disables the channel.
type switches struct {
	pins []machine.Pin
}

func newSwitches(pins []machine.Pin) *switches {
	for _, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return &switches{pins: pins}
}

func (s *switches) Enabled(input int) bool {
	if input < 0 || input >= len(s.pins) {
		return false
	}
	return s.pins[input].Get()
}

// ledObserver toggles the LED on every sent message.
type ledObserver struct {
	led machine.Pin
}

func (o ledObserver) Observe(ev pedal.Event) {
	if ev.Kind == pedal.EventSent {
		o.led.Set(!o.led.Get())
	}
}

// noStore runs the pedals without persistence when flash is unavailable.
type noStore struct{}

func (noStore) LoadCalibration(int) (pedal.Calibration, error) {
	return pedal.Calibration{}, pedal.ErrNoCalibration
}

func (noStore) SaveCalibration(int, pedal.Calibration) error { return nil }
