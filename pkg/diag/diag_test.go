package diag

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/itohio/gopedal/pkg/pedal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLine(t *testing.T) {
	line := AppendLine(nil, Report{Pedal: 1, Controller: 16, Value: 127, Min: 12, Max: 1001})
	assert.Equal(t, "1,16,127,12,1001\n", string(line))
}

func TestParseLine(t *testing.T) {
	r, err := ParseLine("0,11,64,102,897\r\n")
	require.NoError(t, err)
	assert.Equal(t, Report{Pedal: 0, Controller: 11, Value: 64, Min: 102, Max: 897}, r)

	back, err := ParseLine(string(AppendLine(nil, r)))
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestParseLine_Invalid(t *testing.T) {
	lines := []string{
		"",
		"0,11,64,102",
		"0,11,64,102,897,1",
		"x,11,64,102,897",
		"-1,11,64,102,897",
		"0,128,64,102,897",
		"0,11,128,102,897",
		"0,11,-1,102,897",
		"0,11,64,lo,897",
		"0,11,64,102,hi",
	}

	for _, line := range lines {
		_, err := ParseLine(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestWriter_OnlySentEvents(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	cal := pedal.Calibration{Min: 100, Max: 900}
	w.Observe(pedal.Event{Kind: pedal.EventSaved, Channel: 0, Controller: 11, Calibration: cal})
	w.Observe(pedal.Event{Kind: pedal.EventSent, Channel: 0, Controller: 11, Value: 5, Calibration: cal})
	w.Observe(pedal.Event{Kind: pedal.EventSent, Channel: 1, Controller: 16, Value: 6, Calibration: cal})

	assert.Equal(t, "0,11,5,100,900\n1,16,6,100,900\n", buf.String())
}

func TestMulti(t *testing.T) {
	var a, b []pedal.EventKind
	m := Multi{
		pedal.ObserverFunc(func(ev pedal.Event) { a = append(a, ev.Kind) }),
		nil,
		pedal.ObserverFunc(func(ev pedal.Event) { b = append(b, ev.Kind) }),
	}

	m.Observe(pedal.Event{Kind: pedal.EventEnabled})
	assert.Equal(t, []pedal.EventKind{pedal.EventEnabled}, a)
	assert.Equal(t, []pedal.EventKind{pedal.EventEnabled}, b)
}

func TestFromEvent(t *testing.T) {
	now := time.Now()
	r := FromEvent(pedal.Event{
		Kind: pedal.EventSent, Time: now, Channel: 2, Controller: 7, Value: 90,
		Calibration: pedal.Calibration{Min: 3, Max: 1000},
	})
	assert.Equal(t, Report{Time: now, Pedal: 2, Controller: 7, Value: 90, Min: 3, Max: 1000}, r)
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	l.Observe(pedal.Event{Kind: pedal.EventSent, Value: 10})
	assert.Empty(t, buf.String(), "sends are debug")

	l.Observe(pedal.Event{Kind: pedal.EventRelearn, Name: "expression", Err: errors.New("erased")})
	assert.Contains(t, buf.String(), "relearning")
	assert.Contains(t, buf.String(), "name=expression")
	assert.Contains(t, buf.String(), "reason=erased")
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, lvl)
	assert.Equal(t, slog.LevelWarn, lvl.SlogLevel())

	lvl, err = ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl.SlogLevel())

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}
