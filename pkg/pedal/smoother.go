package pedal

import "github.com/chewxy/math32"

// Smoother is an exponential moving average over raw samples.
// The first update seeds the filter with the sample itself.
type Smoother struct {
	alpha  float32
	value  float32
	seeded bool
}

// NewSmoother creates an unseeded smoother with factor alpha.
func NewSmoother(alpha float32) *Smoother {
	return &Smoother{alpha: alpha}
}

// Update feeds one raw sample and returns the smoothed value.
func (s *Smoother) Update(raw uint16) float32 {
	x := float32(raw)
	if !s.seeded {
		s.value = x
		s.seeded = true
		return s.value
	}
	lo, hi := math32.Min(x, s.value), math32.Max(x, s.value)
	v := s.alpha*x + (1-s.alpha)*s.value
	// float32 rounding must not push the result outside its inputs.
	s.value = math32.Max(lo, math32.Min(hi, v))
	return s.value
}

// Value returns the current smoothed value.
func (s *Smoother) Value() float32 {
	return s.value
}

// Seeded reports whether at least one sample was seen.
func (s *Smoother) Seeded() bool {
	return s.seeded
}
