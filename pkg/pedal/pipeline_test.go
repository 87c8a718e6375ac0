package pedal

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoother_SeedsWithFirstSample(t *testing.T) {
	s := NewSmoother(0.15)
	assert.False(t, s.Seeded())

	assert.Equal(t, float32(700), s.Update(700))
	assert.True(t, s.Seeded())

	v := s.Update(800)
	assert.InDelta(t, 715, v, 0.001)
	assert.Equal(t, v, s.Value())
}

func TestSmoother_StaysInDomain(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewSmoother(0.15)

	for i := 0; i < 10000; i++ {
		var raw uint16
		switch rng.Intn(3) {
		case 0:
			raw = 0
		case 1:
			raw = 1023
		default:
			raw = uint16(rng.Intn(1024))
		}
		v := s.Update(raw)
		if v < 0 || v > 1023 {
			t.Fatalf("step %d: smoothed value %v outside domain", i, v)
		}
	}
}

func TestTracker_BoundsAreMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewTracker(1023, 15)

	prev := tr.Calibration()
	for i := 0; i < 5000; i++ {
		tr.Observe(rng.Intn(1024))
		cur := tr.Calibration()
		assert.LessOrEqual(t, cur.Min, prev.Min)
		assert.GreaterOrEqual(t, cur.Max, prev.Max)
		prev = cur
	}
}

func TestTracker_FirstSampleSetsBothBounds(t *testing.T) {
	tr := NewTracker(1023, 15)
	assert.Equal(t, Calibration{Min: 1023, Max: 0}, tr.Calibration())

	assert.True(t, tr.Observe(512))
	assert.Equal(t, Calibration{Min: 512, Max: 512}, tr.Calibration())
	assert.False(t, tr.Observe(512))
}

func TestTracker_Ready(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     bool
	}{
		{name: "unlearned", min: 1023, max: 0, want: false},
		{name: "single point", min: 400, max: 400, want: false},
		{name: "exactly twice deadzone", min: 400, max: 430, want: false},
		{name: "just wide enough", min: 400, max: 431, want: true},
		{name: "full travel", min: 0, max: 1023, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(1023, 15)
			tr.Restore(Calibration{Min: tt.min, Max: tt.max})
			assert.Equal(t, tt.want, tr.Ready())
		})
	}
}

func TestMap_Endpoints(t *testing.T) {
	cal := Calibration{Min: 100, Max: 900}

	f, n := Map(115, cal, 15)
	assert.Equal(t, 0, n)
	assert.InDelta(t, 0, f, 1e-4)

	f, n = Map(885, cal, 15)
	assert.Equal(t, 127, n)
	assert.InDelta(t, 127, f, 1e-4)

	_, n = Map(500, cal, 15)
	assert.Equal(t, 64, n)
}

func TestMap_AlwaysClamped(t *testing.T) {
	cal := Calibration{Min: 100, Max: 900}
	inputs := []float32{-5000, 0, 99, 100, 114.9, 885.1, 900, 1023, 1e6}

	for _, in := range inputs {
		f, n := Map(in, cal, 15)
		assert.GreaterOrEqual(t, n, 0, "input %v", in)
		assert.LessOrEqual(t, n, 127, "input %v", in)
		assert.GreaterOrEqual(t, f, float32(0), "input %v", in)
		assert.LessOrEqual(t, f, float32(127), "input %v", in)
	}

	_, n := Map(500, Calibration{Min: 500, Max: 520}, 15)
	assert.Equal(t, 0, n, "degenerate range maps to zero")
}

func TestGate_ShouldSend(t *testing.T) {
	g := NewGate(0.6)

	tests := []struct {
		name        string
		mappedFloat float32
		mappedInt   int
		lastSent    int
		want        bool
	}{
		{name: "sub threshold jitter", mappedFloat: 64.3, mappedInt: 65, lastSent: 64, want: false},
		{name: "same value", mappedFloat: 64.9, mappedInt: 64, lastSent: 64, want: false},
		{name: "past threshold", mappedFloat: 64.7, mappedInt: 65, lastSent: 64, want: true},
		{name: "bottom stop bypasses threshold", mappedFloat: 0.4, mappedInt: 0, lastSent: 1, want: true},
		{name: "top stop bypasses threshold", mappedFloat: 126.6, mappedInt: 127, lastSent: 126, want: true},
		{name: "bottom stop far away", mappedFloat: 0, mappedInt: 0, lastSent: 64, want: true},
		{name: "already at bottom", mappedFloat: 0.2, mappedInt: 0, lastSent: 0, want: false},
		{name: "never sent", mappedFloat: 42, mappedInt: 42, lastSent: NeverSent, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.ShouldSend(tt.mappedFloat, tt.mappedInt, tt.lastSent))
		})
	}
}
