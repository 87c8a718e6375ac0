package monitor

import "github.com/itohio/gopedal/pkg/diag"

// Downsample reduces reports to at most maxPoints by decimation for display.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
func Downsample(dst []diag.Report, reports []diag.Report, maxPoints int) []diag.Report {
	if len(reports) <= maxPoints {
		if cap(dst) >= len(reports) {
			dst = dst[:len(reports)]
			copy(dst, reports)
			return dst
		}
		result := make([]diag.Report, len(reports))
		copy(result, reports)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]diag.Report, 0, maxPoints)
	}

	step := float64(len(reports)) / float64(maxPoints)
	for i := 0; i < maxPoints; i++ {
		idx := int(float64(i) * step)
		if idx < len(reports) {
			dst = append(dst, reports[idx])
		}
	}

	// Keep the newest report so the trace ends where the pedal is now
	if last := reports[len(reports)-1]; len(dst) > 0 && dst[len(dst)-1] != last {
		dst[len(dst)-1] = last
	}

	return dst
}
