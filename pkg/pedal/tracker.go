package pedal

// Tracker learns the raw travel range of one pedal.
type Tracker struct {
	cal      Calibration
	deadzone int
}

// NewTracker creates a tracker in the unlearned state.
func NewTracker(domainMax uint16, deadzone int) *Tracker {
	return &Tracker{
		cal:      Unlearned(domainMax),
		deadzone: deadzone,
	}
}

// Restore replaces the learned range, typically with a persisted record.
func (t *Tracker) Restore(cal Calibration) {
	t.cal = cal
}

// Observe widens the range to include raw and reports whether a bound moved.
func (t *Tracker) Observe(raw int) bool {
	changed := false
	if raw < t.cal.Min {
		t.cal.Min = raw
		changed = true
	}
	if raw > t.cal.Max {
		t.cal.Max = raw
		changed = true
	}
	return changed
}

// Ready reports whether the range is wide enough to map through the deadzone.
func (t *Tracker) Ready() bool {
	return t.cal.Max > t.cal.Min+2*t.deadzone
}

// Calibration returns the learned range.
func (t *Tracker) Calibration() Calibration {
	return t.cal
}
