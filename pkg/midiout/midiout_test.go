package midiout

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func TestPacket(t *testing.T) {
	tests := []struct {
		name                       string
		cable, ch, controller, val uint8
		want                       [4]byte
	}{
		{name: "expression on channel 1", cable: 0, ch: 1, controller: 11, val: 64, want: [4]byte{0x0B, 0xB0, 0x0B, 0x40}},
		{name: "channel 16", cable: 0, ch: 16, controller: 16, val: 127, want: [4]byte{0x0B, 0xBF, 0x10, 0x7F}},
		{name: "cable 1", cable: 1, ch: 3, controller: 1, val: 0, want: [4]byte{0x1B, 0xB2, 0x01, 0x00}},
		{name: "data masked to 7 bits", cable: 0, ch: 1, controller: 0x8B, val: 0xFF, want: [4]byte{0x0B, 0xB0, 0x0B, 0x7F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Packet(tt.cable, tt.ch, tt.controller, tt.val)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPacket_InvalidChannel(t *testing.T) {
	_, err := Packet(0, 0, 11, 64)
	assert.Error(t, err)
	_, err = Packet(0, 17, 11, 64)
	assert.Error(t, err)
}

type flushingWriter struct {
	bytes.Buffer
	flushes int
}

func (w *flushingWriter) Flush() error {
	w.flushes++
	return nil
}

func TestUSB_SendWritesAndFlushes(t *testing.T) {
	w := &flushingWriter{}
	u := NewUSB(w, 0)

	require.NoError(t, u.Send(1, 11, 64))
	require.NoError(t, u.Send(1, 16, 0))

	assert.Equal(t, []byte{0x0B, 0xB0, 0x0B, 0x40, 0x0B, 0xB0, 0x10, 0x00}, w.Bytes())
	assert.Equal(t, 2, w.flushes)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("endpoint stalled") }

func TestUSB_SendErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewUSB(&buf, 0).Send(0, 11, 64))
	assert.Zero(t, buf.Len())

	assert.Error(t, NewUSB(failingWriter{}, 0).Send(1, 11, 64))
}

func TestPort_Send(t *testing.T) {
	var got []midi.Message
	p := &Port{name: "test", send: func(msg midi.Message) error {
		got = append(got, msg)
		return nil
	}}

	require.NoError(t, p.Send(2, 11, 100))
	require.Len(t, got, 1)

	var ch, controller, value uint8
	require.True(t, got[0].GetControlChange(&ch, &controller, &value))
	assert.Equal(t, uint8(1), ch)
	assert.Equal(t, uint8(11), controller)
	assert.Equal(t, uint8(100), value)

	assert.Error(t, p.Send(17, 11, 100))
	assert.Len(t, got, 1)
}

func TestPort_SendError(t *testing.T) {
	p := &Port{name: "test", send: func(midi.Message) error { return errors.New("closed") }}
	err := p.Send(1, 11, 1)
	assert.ErrorContains(t, err, "test")
}
