// Package diag formats and parses the human readable diagnostic stream of the pedal firmware
// and provides pedal.Observer implementations that produce it.
package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/gopedal/pkg/pedal"
)

// Report is one diagnostic line: which pedal sent what, and its learned range.
type Report struct {
	Time       time.Time
	Pedal      int
	Controller uint8
	Value      int
	Min        int
	Max        int
}

// FromEvent converts a sent event into a report.
func FromEvent(ev pedal.Event) Report {
	return Report{
		Time:       ev.Time,
		Pedal:      ev.Channel,
		Controller: ev.Controller,
		Value:      ev.Value,
		Min:        ev.Calibration.Min,
		Max:        ev.Calibration.Max,
	}
}

// AppendLine appends the wire form of r to dst.
// Format: pedal,cc,value,min,max\n
// Example: 0,11,64,102,897
func AppendLine(dst []byte, r Report) []byte {
	dst = strconv.AppendInt(dst, int64(r.Pedal), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(r.Controller), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(r.Value), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(r.Min), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(r.Max), 10)
	return append(dst, '\n')
}

// ParseLine parses one diagnostic line. The report time is left for the caller to set.
func ParseLine(line string) (Report, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 5 {
		return Report{}, fmt.Errorf("invalid line format: expected 5 comma-separated values, got %d", len(parts))
	}

	pedalIdx, err := strconv.Atoi(parts[0])
	if err != nil || pedalIdx < 0 {
		return Report{}, fmt.Errorf("invalid pedal index %q", parts[0])
	}

	cc, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || cc > pedal.MaxValue {
		return Report{}, fmt.Errorf("invalid controller %q", parts[1])
	}

	value, err := strconv.Atoi(parts[2])
	if err != nil || value < 0 || value > pedal.MaxValue {
		return Report{}, fmt.Errorf("invalid value %q", parts[2])
	}

	minRaw, err := strconv.Atoi(parts[3])
	if err != nil {
		return Report{}, fmt.Errorf("invalid min: %w", err)
	}
	maxRaw, err := strconv.Atoi(parts[4])
	if err != nil {
		return Report{}, fmt.Errorf("invalid max: %w", err)
	}

	return Report{
		Pedal:      pedalIdx,
		Controller: uint8(cc),
		Value:      value,
		Min:        minRaw,
		Max:        maxRaw,
	}, nil
}

// Writer writes a line per sent message. Other events are ignored.
type Writer struct {
	w   io.Writer
	buf []byte
}

var _ pedal.Observer = (*Writer)(nil)

// NewWriter creates a line writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 32)}
}

// Observe implements pedal.Observer. Write errors are dropped; the stream is best effort.
func (d *Writer) Observe(ev pedal.Event) {
	if ev.Kind != pedal.EventSent {
		return
	}
	d.buf = AppendLine(d.buf[:0], FromEvent(ev))
	d.w.Write(d.buf)
}

// Multi fans events out to several observers in order.
type Multi []pedal.Observer

// Observe implements pedal.Observer.
func (m Multi) Observe(ev pedal.Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(ev)
		}
	}
}
