package pedal

import "github.com/chewxy/math32"

// Map interpolates smoothed from the learned range, trimmed by deadzone at both ends,
// onto [0,127]. Both the fractional and the rounded result are clamped.
// Callers should only map when the tracker is Ready.
func Map(smoothed float32, cal Calibration, deadzone int) (float32, int) {
	lo := float32(cal.Min + deadzone)
	hi := float32(cal.Max - deadzone)
	if hi <= lo {
		return 0, 0
	}

	f := (smoothed - lo) / (hi - lo) * MaxValue
	f = math32.Max(0, math32.Min(MaxValue, f))

	n := int(math32.Floor(f + 0.5))
	if n > MaxValue {
		n = MaxValue
	}
	return f, n
}

// Gate suppresses sends caused by sub-unit jitter.
type Gate struct {
	threshold float32
}

// NewGate creates a gate with the given hysteresis threshold in mapped units.
func NewGate(threshold float32) Gate {
	return Gate{threshold: threshold}
}

// ShouldSend reports whether mappedInt is a significant change from lastSent.
// The end stops 0 and 127 bypass the threshold so full travel is always reported.
func (g Gate) ShouldSend(mappedFloat float32, mappedInt, lastSent int) bool {
	if mappedInt == lastSent {
		return false
	}
	if mappedInt == 0 || mappedInt == MaxValue {
		return true
	}
	return math32.Abs(mappedFloat-float32(lastSent)) >= g.threshold
}
