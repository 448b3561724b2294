package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestUint16BigEndian(t *testing.T) {
	buf := []byte{0x00, 0x12, 0x34, 0x00}

	v, err := Uint16(buf, 1)
	if err != nil {
		t.Fatalf("Uint16 failed: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("expected 0x1234, got 0x%04X", v)
	}
}

func TestUint32BigEndian(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[2:], 0xDEADBEEF)

	v, err := Uint32(buf, 2)
	if err != nil {
		t.Fatalf("Uint32 failed: %v", err)
	}
	if v != 0xDEADBEEF {
		t.Errorf("expected 0xDEADBEEF, got 0x%08X", v)
	}
}

func TestFloat32DeviceOrder(t *testing.T) {
	// Floats arrive in the sensor's native little-endian order and must not
	// be byte-swapped on decode.
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(12.5))

	v, err := Float32(buf, 0)
	if err != nil {
		t.Fatalf("Float32 failed: %v", err)
	}
	if v != 12.5 {
		t.Errorf("expected 12.5, got %v", v)
	}
}

func TestOutOfRangeReads(t *testing.T) {
	buf := make([]byte, 4)

	if _, err := Uint16(buf, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Uint16 past end: expected ErrOutOfRange, got %v", err)
	}
	if _, err := Uint32(buf, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Uint32 past end: expected ErrOutOfRange, got %v", err)
	}
	if _, err := Uint8(buf, 4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Uint8 past end: expected ErrOutOfRange, got %v", err)
	}
	if _, err := Float32(buf, -1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("negative offset: expected ErrOutOfRange, got %v", err)
	}
}

func TestBit(t *testing.T) {
	// Classification byte layout: bits 0,1,3 for return 1 and 4,5,7 for
	// return 2.
	b := byte(0b1011_1011)

	set := []uint8{0, 1, 3, 4, 5, 7}
	clear := []uint8{2, 6}
	for _, pos := range set {
		if !Bit(b, pos) {
			t.Errorf("bit %d should be set", pos)
		}
	}
	for _, pos := range clear {
		if Bit(b, pos) {
			t.Errorf("bit %d should be clear", pos)
		}
	}
}

func TestDecoderStickyError(t *testing.T) {
	buf := make([]byte, 6)
	binary.BigEndian.PutUint32(buf, 42)

	d := NewDecoder(buf)
	if v := d.Uint32(0); v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
	if err := d.Err(); err != nil {
		t.Fatalf("unexpected error after valid read: %v", err)
	}

	// Out-of-range read records the error and returns zero.
	if v := d.Uint32(4); v != 0 {
		t.Errorf("failed read should return zero, got %d", v)
	}
	if !errors.Is(d.Err(), ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", d.Err())
	}

	// First error sticks even after subsequent valid reads.
	d.Uint8(0)
	if !errors.Is(d.Err(), ErrOutOfRange) {
		t.Errorf("error should be sticky, got %v", d.Err())
	}
}
