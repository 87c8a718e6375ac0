//go:build tinygo

package main

import (
	"errors"
	"machine"
)

// flashMedium keeps the calibration area in RAM and rewrites the first erase
// block of the flash data region on every write.
type flashMedium struct {
	shadow []byte
	block  []byte
}

func newFlashMedium(size int) (*flashMedium, error) {
	blockSize := int(machine.Flash.EraseBlockSize())
	if blockSize <= 0 || machine.Flash.Size() < int64(blockSize) {
		return nil, errors.New("no flash data area")
	}
	if size > blockSize {
		size = blockSize
	}

	m := &flashMedium{
		shadow: make([]byte, size),
		block:  make([]byte, blockSize),
	}
	if _, err := machine.Flash.ReadAt(m.block, 0); err != nil {
		return nil, err
	}
	copy(m.shadow, m.block)
	return m, nil
}

func (m *flashMedium) Size() int64 {
	return int64(len(m.shadow))
}

func (m *flashMedium) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.shadow)) {
		return 0, errors.New("read out of range")
	}
	return copy(p, m.shadow[off:]), nil
}

func (m *flashMedium) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.shadow)) {
		return 0, errors.New("write out of range")
	}
	n := copy(m.shadow[off:], p)

	copy(m.block, m.shadow)
	if err := machine.Flash.EraseBlocks(0, 1); err != nil {
		return 0, err
	}
	if _, err := machine.Flash.WriteAt(m.block, 0); err != nil {
		return 0, err
	}
	return n, nil
}
