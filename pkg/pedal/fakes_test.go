package pedal

import (
	"errors"
	"fmt"
)

type fakeSampler struct {
	levels map[int]uint16
	reads  int
}

func newFakeSampler() *fakeSampler {
	return &fakeSampler{levels: make(map[int]uint16)}
}

func (s *fakeSampler) Sample(input int) uint16 {
	s.reads++
	return s.levels[input]
}

type fakeSwitch map[int]bool

func (s fakeSwitch) Enabled(input int) bool { return s[input] }

type sentMessage struct {
	Channel, Controller, Value uint8
}

type fakeEmitter struct {
	sent []sentMessage
	err  error
}

func (e *fakeEmitter) Send(channel, controller, value uint8) error {
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, sentMessage{channel, controller, value})
	return nil
}

func (e *fakeEmitter) values() []int {
	out := make([]int, len(e.sent))
	for i, m := range e.sent {
		out[i] = int(m.Value)
	}
	return out
}

type fakeStore struct {
	records map[int]Calibration
	saves   int
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int]Calibration)}
}

func (s *fakeStore) LoadCalibration(addr int) (Calibration, error) {
	cal, ok := s.records[addr]
	if !ok {
		return Calibration{}, fmt.Errorf("address %d: %w", addr, ErrNoCalibration)
	}
	return cal, nil
}

func (s *fakeStore) SaveCalibration(addr int, cal Calibration) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[addr] = cal
	return nil
}

type eventLog []Event

func (l *eventLog) Observe(ev Event) { *l = append(*l, ev) }

func (l eventLog) kinds() []EventKind {
	out := make([]EventKind, len(l))
	for i, ev := range l {
		out[i] = ev.Kind
	}
	return out
}

var errPortClosed = errors.New("port closed")
