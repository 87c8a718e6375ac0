package store

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/itohio/gopedal/pkg/pedal"
)

const (
	// Erased is the value of every byte of an erased medium.
	Erased = 0xFF
	// VersionAddr is the address of the schema version byte.
	VersionAddr = 0
	// RecordSize is the size of one calibration record: min and max as little-endian uint16.
	RecordSize = 4
)

// Medium is a byte-addressable nonvolatile memory.
type Medium interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
}

// Store keeps versioned calibration records on a Medium.
// Writes are not atomic; a power loss mid-write can leave a record torn,
// which the bounds check on load usually rejects.
type Store struct {
	m         Medium
	domainMax uint16
}

var _ pedal.Store = (*Store)(nil)

// New creates a Store that validates records against [0, domainMax].
func New(m Medium, domainMax uint16) *Store {
	return &Store{m: m, domainMax: domainMax}
}

// Version reads the schema version byte.
func (s *Store) Version() (byte, error) {
	var b [1]byte
	if _, err := s.m.ReadAt(b[:], VersionAddr); err != nil {
		return 0, fmt.Errorf("failed to read version: %w", err)
	}
	return b[0], nil
}

// Prepare checks the stored schema version against expected. On mismatch the
// whole medium is erased and expected is written, discarding all records.
func (s *Store) Prepare(expected byte) (migrated bool, err error) {
	v, err := s.Version()
	if err != nil {
		return false, err
	}
	if v == expected {
		return false, nil
	}

	if err := s.Erase(); err != nil {
		return false, err
	}
	if _, err := s.m.WriteAt([]byte{expected}, VersionAddr); err != nil {
		return false, fmt.Errorf("failed to write version: %w", err)
	}
	return true, nil
}

// Erase resets every byte of the medium to Erased.
func (s *Store) Erase() error {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = Erased
	}

	size := s.m.Size()
	for off := int64(0); off < size; off += int64(len(buf)) {
		n := int64(len(buf))
		if off+n > size {
			n = size - off
		}
		if _, err := s.m.WriteAt(buf[:n], off); err != nil {
			return fmt.Errorf("failed to erase at %d: %w", off, err)
		}
	}
	return nil
}

// LoadCalibration reads and validates the record at addr. Erased or corrupted
// records (all zeros, all ones, inverted or out of domain) yield pedal.ErrNoCalibration.
func (s *Store) LoadCalibration(addr int) (pedal.Calibration, error) {
	if err := s.checkAddr(addr); err != nil {
		return pedal.Calibration{}, err
	}

	var buf [RecordSize]byte
	if _, err := s.m.ReadAt(buf[:], int64(addr)); err != nil {
		return pedal.Calibration{}, fmt.Errorf("failed to read calibration at %d: %w", addr, err)
	}

	minRaw := binary.LittleEndian.Uint16(buf[0:2])
	maxRaw := binary.LittleEndian.Uint16(buf[2:4])
	if minRaw > s.domainMax || maxRaw > s.domainMax || maxRaw <= minRaw {
		return pedal.Calibration{}, fmt.Errorf("address %d holds min %d max %d: %w", addr, minRaw, maxRaw, pedal.ErrNoCalibration)
	}

	return pedal.Calibration{Min: int(minRaw), Max: int(maxRaw)}, nil
}

// SaveCalibration writes the record at addr. Callers throttle writes.
func (s *Store) SaveCalibration(addr int, cal pedal.Calibration) error {
	if err := s.checkAddr(addr); err != nil {
		return err
	}
	if cal.Min < 0 || cal.Max < 0 || cal.Min > int(s.domainMax) || cal.Max > int(s.domainMax) {
		return fmt.Errorf("calibration %d-%d outside domain 0-%d", cal.Min, cal.Max, s.domainMax)
	}

	var buf [RecordSize]byte
	binary.LittleEndian.PutUint16(buf[0:2], uint16(cal.Min))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(cal.Max))
	if _, err := s.m.WriteAt(buf[:], int64(addr)); err != nil {
		return fmt.Errorf("failed to write calibration at %d: %w", addr, err)
	}
	return nil
}

func (s *Store) checkAddr(addr int) error {
	if addr <= VersionAddr || int64(addr)+RecordSize > s.m.Size() {
		return fmt.Errorf("record address %d outside medium (1-%d)", addr, s.m.Size()-RecordSize)
	}
	return nil
}
