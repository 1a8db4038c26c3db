// Package wire implements the length-prefixed binary primitives used by the
// realtime feeds. All readers are pure functions over a byte slice plus an
// offset and return the decoded value along with the offset of the next field.
package wire

import (
	"errors"
	"fmt"
	"math"
)

// Field header wire types.
const (
	TypeVarint          = 0
	TypeFixed64         = 1
	TypeLengthDelimited = 2
	TypeFixed32         = 5
)

var ErrTruncated = errors.New("unexpected end of buffer")

// ReadUvarint decodes an unsigned base-128 varint starting at offset.
func ReadUvarint(buf []byte, offset int) (uint64, int, error) {
	var value uint64
	var shift uint

	for {
		if offset >= len(buf) {
			return 0, offset, ErrTruncated
		}
		if shift >= 64 {
			return 0, offset, errors.New("varint overflows 64 bits")
		}

		b := buf[offset]
		offset += 1

		value |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return value, offset, nil
		}
		shift += 7
	}
}

// ReadTag decodes a field header, returning the field number and wire type.
func ReadTag(buf []byte, offset int) (int, int, int, error) {
	key, offset, err := ReadUvarint(buf, offset)
	if err != nil {
		return 0, 0, offset, err
	}

	return int(key >> 3), int(key & 0x7), offset, nil
}

// ReadFloat32 decodes a little-endian IEEE-754 32-bit float.
func ReadFloat32(buf []byte, offset int) (float32, int, error) {
	if offset+4 > len(buf) {
		return 0, offset, ErrTruncated
	}

	bits := uint32(buf[offset]) |
		uint32(buf[offset+1])<<8 |
		uint32(buf[offset+2])<<16 |
		uint32(buf[offset+3])<<24

	return math.Float32frombits(bits), offset + 4, nil
}

// ReadBytes decodes a length-delimited byte run (varint length prefix plus
// that many raw bytes). The returned slice aliases buf.
func ReadBytes(buf []byte, offset int) ([]byte, int, error) {
	length, offset, err := ReadUvarint(buf, offset)
	if err != nil {
		return nil, offset, err
	}

	end := offset + int(length)
	if end > len(buf) || end < offset {
		return nil, offset, ErrTruncated
	}

	return buf[offset:end], end, nil
}

// ReadString is ReadBytes with a string conversion.
func ReadString(buf []byte, offset int) (string, int, error) {
	value, offset, err := ReadBytes(buf, offset)

	return string(value), offset, err
}

// ReadZigZag decodes a signed integer from its zig-zag varint encoding.
func ReadZigZag(buf []byte, offset int) (int64, int, error) {
	value, offset, err := ReadUvarint(buf, offset)
	if err != nil {
		return 0, offset, err
	}

	return int64(value>>1) ^ -int64(value&1), offset, nil
}

// SkipField advances past a field payload given its wire type, so unknown
// fields never corrupt offset tracking.
func SkipField(buf []byte, offset int, wireType int) (int, error) {
	switch wireType {
	case TypeVarint:
		_, offset, err := ReadUvarint(buf, offset)
		return offset, err
	case TypeFixed64:
		if offset+8 > len(buf) {
			return offset, ErrTruncated
		}
		return offset + 8, nil
	case TypeLengthDelimited:
		_, offset, err := ReadBytes(buf, offset)
		return offset, err
	case TypeFixed32:
		if offset+4 > len(buf) {
			return offset, ErrTruncated
		}
		return offset + 4, nil
	default:
		return offset, fmt.Errorf("unknown wire type %d", wireType)
	}
}
