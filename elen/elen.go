// Package elen implements the order-preserving numeric encoding used to
// turn numeric subjects/predicates into bytes that sort the same way the
// numbers do: for any two values a, b of the same kind,
// encode(a) < encode(b) lexicographically iff a < b numerically.
//
// Integers flip the sign bit of their big-endian two's-complement form.
// Floats/doubles flip every bit when negative and only the sign bit when
// non-negative, which maps IEEE-754 ordering of finite values onto
// unsigned lexicographic byte ordering. NaN is rejected outright; the two
// signed zeros collapse to one canonical encoding.
package elen

import (
	"encoding/binary"
	"math"

	"github.com/ledgerwatch/hxhim/hxerr"
)

func checkLen(encoded []byte, want int) error {
	if len(encoded) == 0 {
		return hxerr.New(hxerr.EncodeEmpty, "empty input")
	}
	if len(encoded) != want {
		return hxerr.New(hxerr.EncodeTrailing, "unexpected encoded length")
	}
	return nil
}

// EncodeInt32 encodes a signed 32-bit integer into 4 order-preserving bytes.
func EncodeInt32(v int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v)^(1<<31))
	return buf
}

// DecodeInt32 inverts EncodeInt32.
func DecodeInt32(encoded []byte) (int32, error) {
	if err := checkLen(encoded, 4); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(encoded) ^ (1 << 31)), nil
}

// EncodeInt64 encodes a signed 64-bit integer into 8 order-preserving bytes.
func EncodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)^(1<<63))
	return buf
}

// DecodeInt64 inverts EncodeInt64.
func DecodeInt64(encoded []byte) (int64, error) {
	if err := checkLen(encoded, 8); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(encoded) ^ (1 << 63)), nil
}

// EncodeUint32 encodes an unsigned 32-bit integer. Big-endian unsigned
// bytes already sort the same as the numeric value, so no bit flip is
// needed.
func EncodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

// DecodeUint32 inverts EncodeUint32.
func DecodeUint32(encoded []byte) (uint32, error) {
	if err := checkLen(encoded, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(encoded), nil
}

// EncodeUint64 encodes an unsigned 64-bit integer.
func EncodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// DecodeUint64 inverts EncodeUint64.
func DecodeUint64(encoded []byte) (uint64, error) {
	if err := checkLen(encoded, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(encoded), nil
}

const signBit32 = uint32(1) << 31
const signBit64 = uint64(1) << 63

// EncodeFloat32 encodes a float32 into 4 order-preserving bytes. NaN is
// rejected; +0 and -0 both encode to the same canonical zero.
func EncodeFloat32(v float32) ([]byte, error) {
	if math.IsNaN(float64(v)) {
		return nil, hxerr.New(hxerr.EncodeNaN, "cannot encode NaN")
	}
	if v == 0 {
		v = 0 // collapse -0 to +0
	}
	bits := math.Float32bits(v)
	if bits&signBit32 != 0 {
		bits = ^bits
	} else {
		bits |= signBit32
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, bits)
	return buf, nil
}

// DecodeFloat32 inverts EncodeFloat32.
func DecodeFloat32(encoded []byte) (float32, error) {
	if err := checkLen(encoded, 4); err != nil {
		return 0, err
	}
	bits := binary.BigEndian.Uint32(encoded)
	if bits&signBit32 != 0 {
		bits &^= signBit32
	} else {
		bits = ^bits
	}
	return math.Float32frombits(bits), nil
}

// EncodeFloat64 encodes a float64 into 8 order-preserving bytes.
func EncodeFloat64(v float64) ([]byte, error) {
	if math.IsNaN(v) {
		return nil, hxerr.New(hxerr.EncodeNaN, "cannot encode NaN")
	}
	if v == 0 {
		v = 0
	}
	bits := math.Float64bits(v)
	if bits&signBit64 != 0 {
		bits = ^bits
	} else {
		bits |= signBit64
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf, nil
}

// DecodeFloat64 inverts EncodeFloat64.
func DecodeFloat64(encoded []byte) (float64, error) {
	if err := checkLen(encoded, 8); err != nil {
		return 0, err
	}
	bits := binary.BigEndian.Uint64(encoded)
	if bits&signBit64 != 0 {
		bits &^= signBit64
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}
