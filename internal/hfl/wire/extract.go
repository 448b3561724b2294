// Package wire provides bounds-checked fixed-offset field extraction for
// HFL110DCU UDP payloads.
//
// The device emits integers in network (big-endian) byte order and float32
// fields in its own native order, which is little-endian on the DCU. Every
// accessor validates the requested offset against the buffer length before
// reading; there are no panicking fast paths.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a field read would extend past the end of
// the fragment buffer.
var ErrOutOfRange = errors.New("wire: field offset out of range")

// Uint8 reads a single byte at offset.
func Uint8(buf []byte, offset int) (uint8, error) {
	if offset < 0 || offset+1 > len(buf) {
		return 0, fmt.Errorf("%w: uint8 at %d, buffer %d bytes", ErrOutOfRange, offset, len(buf))
	}
	return buf[offset], nil
}

// Uint16 reads a big-endian uint16 at offset and converts it to native order.
func Uint16(buf []byte, offset int) (uint16, error) {
	if offset < 0 || offset+2 > len(buf) {
		return 0, fmt.Errorf("%w: uint16 at %d, buffer %d bytes", ErrOutOfRange, offset, len(buf))
	}
	return binary.BigEndian.Uint16(buf[offset:]), nil
}

// Uint32 reads a big-endian uint32 at offset and converts it to native order.
func Uint32(buf []byte, offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(buf) {
		return 0, fmt.Errorf("%w: uint32 at %d, buffer %d bytes", ErrOutOfRange, offset, len(buf))
	}
	return binary.BigEndian.Uint32(buf[offset:]), nil
}

// Float32 reads a float32 at offset. Unlike the integer fields, the DCU
// writes floats in its native little-endian order, so the bit pattern is
// taken as-is rather than byte-swapped.
func Float32(buf []byte, offset int) (float32, error) {
	if offset < 0 || offset+4 > len(buf) {
		return 0, fmt.Errorf("%w: float32 at %d, buffer %d bytes", ErrOutOfRange, offset, len(buf))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:])), nil
}

// Bit reports whether bit pos (0 = least significant) of b is set.
func Bit(b byte, pos uint8) bool {
	return (b>>pos)&1 == 1
}

// Decoder reads successive fields from a fragment buffer, recording the
// first out-of-range access instead of returning an error per field. This
// keeps multi-field record decoders flat: read everything, then check Err
// once. A failed read yields the zero value.
type Decoder struct {
	buf []byte
	err error
}

// NewDecoder returns a Decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Err returns the first out-of-range error encountered, or nil.
func (d *Decoder) Err() error {
	return d.err
}

// Len returns the length of the underlying buffer.
func (d *Decoder) Len() int {
	return len(d.buf)
}

// Uint8 reads a byte at offset.
func (d *Decoder) Uint8(offset int) uint8 {
	v, err := Uint8(d.buf, offset)
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}

// Uint16 reads a big-endian uint16 at offset.
func (d *Decoder) Uint16(offset int) uint16 {
	v, err := Uint16(d.buf, offset)
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}

// Uint32 reads a big-endian uint32 at offset.
func (d *Decoder) Uint32(offset int) uint32 {
	v, err := Uint32(d.buf, offset)
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}

// Float32 reads a device-native float32 at offset.
func (d *Decoder) Float32(offset int) float32 {
	v, err := Float32(d.buf, offset)
	if err != nil && d.err == nil {
		d.err = err
	}
	return v
}
