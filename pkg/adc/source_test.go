package adc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMock_FirstConversionAfterSwitchIsBiased(t *testing.T) {
	m := NewMock(MockConfig{Crosstalk: 0.5})
	m.SetLevel(0, 1000)
	m.SetLevel(2, 200)

	assert.Equal(t, uint16(1000), m.Convert(0))
	assert.Equal(t, uint16(600), m.Convert(2), "residual charge from input 0")
	assert.Equal(t, uint16(200), m.Convert(2))
}

func TestSource_DiscardsFirstConversion(t *testing.T) {
	m := NewMock(MockConfig{Crosstalk: 0.5})
	m.SetLevel(0, 1000)
	m.SetLevel(2, 200)
	src := NewSource(m, 1023)

	for i := 0; i < 10; i++ {
		assert.Equal(t, uint16(1000), src.Sample(0))
		assert.Equal(t, uint16(200), src.Sample(2))
	}
}

type fixedConverter struct {
	values []uint16
	calls  int
}

func (c *fixedConverter) Convert(int) uint16 {
	v := c.values[c.calls%len(c.values)]
	c.calls++
	return v
}

func TestSource_ClampsToDomain(t *testing.T) {
	conv := &fixedConverter{values: []uint16{0, 4095}}
	src := NewSource(conv, 1023)

	assert.Equal(t, uint16(1023), src.Sample(0))
	assert.Equal(t, 2, conv.calls)
}

func TestMock_Switches(t *testing.T) {
	m := NewMock(MockConfig{})
	assert.False(t, m.Enabled(5))

	m.SetEnabled(5, true)
	assert.True(t, m.Enabled(5))
	assert.False(t, m.Enabled(6))
}

func TestMock_NoiseStaysInDomain(t *testing.T) {
	m := NewMock(MockConfig{Noise: 20})
	m.SetLevel(0, 1020)
	m.SetLevel(1, 3)

	for i := 0; i < 1000; i++ {
		assert.LessOrEqual(t, m.Convert(0), uint16(1023))
		assert.LessOrEqual(t, m.Convert(1), uint16(1023))
	}
}

func TestSweep_Level(t *testing.T) {
	s := Sweep{Input: 0, Lo: 100, Hi: 900, Period: 4 * time.Second}

	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 100},
		{time.Second, 500},
		{2 * time.Second, 900},
		{3 * time.Second, 500},
		{4 * time.Second, 100},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, s.Level(tt.elapsed), 1e-9, "elapsed %v", tt.elapsed)
	}

	m := NewMock(MockConfig{})
	s.Apply(m, 2*time.Second)
	assert.Equal(t, uint16(900), m.Convert(0))
}
