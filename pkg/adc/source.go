package adc

import "github.com/itohio/gopedal/pkg/pedal"

// Converter performs a single analog conversion on an input.
type Converter interface {
	Convert(input int) uint16
}

// Source reads inputs through a multiplexed ADC.
//
// The sample-and-hold capacitor keeps residual charge from the previously
// converted input, biasing the first conversion after a switch toward the old
// voltage. Source converts twice and keeps only the second result.
type Source struct {
	conv Converter
	max  uint16
}

var _ pedal.Sampler = (*Source)(nil)

// NewSource creates a Source whose readings are limited to [0, domainMax].
func NewSource(conv Converter, domainMax uint16) *Source {
	return &Source{conv: conv, max: domainMax}
}

// Sample returns the settled reading of input.
func (s *Source) Sample(input int) uint16 {
	s.conv.Convert(input)
	v := s.conv.Convert(input)
	if v > s.max {
		v = s.max
	}
	return v
}
