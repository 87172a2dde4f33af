// Package blob implements the atomic byte-range-plus-kind value that
// underlies every key and value in the triple store: (bytes, kind, owned).
package blob

import (
	"encoding/binary"
	"math"

	"github.com/ledgerwatch/hxhim/hxerr"
)

// Blob is a byte range tagged with a data Kind. Owned reports whether the
// Blob holds the only reference to its backing array; a borrowed Blob
// aliases memory owned by something else (a decoded message, a caller's
// buffer) and must not outlive it — that lifetime rule is a caller
// contract, not something this package can enforce.
type Blob struct {
	Bytes []byte
	Kind  Kind
	Owned bool
}

// New wraps b as a borrowed Blob: no copy is made.
func New(b []byte, k Kind) Blob {
	return Blob{Bytes: b, Kind: k, Owned: false}
}

// NewOwned copies b into a freshly allocated Blob.
func NewOwned(b []byte, k Kind) Blob {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Blob{Bytes: cp, Kind: k, Owned: true}
}

// Empty is the legal zero-length Blob of the given Kind.
func Empty(k Kind) Blob {
	return Blob{Bytes: nil, Kind: k, Owned: false}
}

// Clone always returns an owned copy, regardless of b's own ownership.
func (b Blob) Clone() Blob {
	return NewOwned(b.Bytes, b.Kind)
}

// Len returns the byte length of the Blob.
func (b Blob) Len() int { return len(b.Bytes) }

func kindMismatch(want Kind, have Kind) error {
	return hxerr.New(hxerr.KindMismatch, "expected kind "+want.String()+", have "+have.String())
}

func badLen(k Kind, have int) error {
	return hxerr.New(hxerr.KindMismatch, "wrong length for kind "+k.String())
}

// Int32 reinterprets the Blob's native-byte-order bytes as an int32.
func (b Blob) Int32() (int32, error) {
	if b.Kind != Int32 {
		return 0, kindMismatch(Int32, b.Kind)
	}
	if len(b.Bytes) != 4 {
		return 0, badLen(Int32, len(b.Bytes))
	}
	return int32(binary.LittleEndian.Uint32(b.Bytes)), nil
}

// Int64 reinterprets the Blob's native-byte-order bytes as an int64.
func (b Blob) Int64() (int64, error) {
	if b.Kind != Int64 {
		return 0, kindMismatch(Int64, b.Kind)
	}
	if len(b.Bytes) != 8 {
		return 0, badLen(Int64, len(b.Bytes))
	}
	return int64(binary.LittleEndian.Uint64(b.Bytes)), nil
}

// Uint32 reinterprets the Blob's native-byte-order bytes as a uint32.
func (b Blob) Uint32() (uint32, error) {
	if b.Kind != Uint32 {
		return 0, kindMismatch(Uint32, b.Kind)
	}
	if len(b.Bytes) != 4 {
		return 0, badLen(Uint32, len(b.Bytes))
	}
	return binary.LittleEndian.Uint32(b.Bytes), nil
}

// Uint64 reinterprets the Blob's native-byte-order bytes as a uint64.
func (b Blob) Uint64() (uint64, error) {
	if b.Kind != Uint64 {
		return 0, kindMismatch(Uint64, b.Kind)
	}
	if len(b.Bytes) != 8 {
		return 0, badLen(Uint64, len(b.Bytes))
	}
	return binary.LittleEndian.Uint64(b.Bytes), nil
}

// Float32 reinterprets the Blob's native-byte-order bytes as a float32.
func (b Blob) Float32() (float32, error) {
	if b.Kind != Float32 {
		return 0, kindMismatch(Float32, b.Kind)
	}
	if len(b.Bytes) != 4 {
		return 0, badLen(Float32, len(b.Bytes))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b.Bytes)), nil
}

// Float64 reinterprets the Blob's native-byte-order bytes as a float64.
func (b Blob) Float64() (float64, error) {
	if b.Kind != Float64 {
		return 0, kindMismatch(Float64, b.Kind)
	}
	if len(b.Bytes) != 8 {
		return 0, badLen(Float64, len(b.Bytes))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b.Bytes)), nil
}

// AsFloat64 widens any numeric Kind to a float64, for histogram bucketing.
func (b Blob) AsFloat64() (float64, bool) {
	switch b.Kind {
	case Int32:
		v, err := b.Int32()
		return float64(v), err == nil
	case Int64:
		v, err := b.Int64()
		return float64(v), err == nil
	case Uint32:
		v, err := b.Uint32()
		return float64(v), err == nil
	case Uint64:
		v, err := b.Uint64()
		return float64(v), err == nil
	case Float32:
		v, err := b.Float32()
		return float64(v), err == nil
	case Float64:
		v, err := b.Float64()
		return v, err == nil
	default:
		return 0, false
	}
}

// FromInt32 builds an owned Int32 Blob in native byte order.
func FromInt32(v int32) Blob {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return Blob{Bytes: buf, Kind: Int32, Owned: true}
}

// FromInt64 builds an owned Int64 Blob in native byte order.
func FromInt64(v int64) Blob {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return Blob{Bytes: buf, Kind: Int64, Owned: true}
}

// FromUint32 builds an owned Uint32 Blob in native byte order.
func FromUint32(v uint32) Blob {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return Blob{Bytes: buf, Kind: Uint32, Owned: true}
}

// FromUint64 builds an owned Uint64 Blob in native byte order.
func FromUint64(v uint64) Blob {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return Blob{Bytes: buf, Kind: Uint64, Owned: true}
}

// FromFloat32 builds an owned Float32 Blob in native byte order.
func FromFloat32(v float32) Blob {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return Blob{Bytes: buf, Kind: Float32, Owned: true}
}

// FromFloat64 builds an owned Float64 Blob in native byte order.
func FromFloat64(v float64) Blob {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return Blob{Bytes: buf, Kind: Float64, Owned: true}
}

// FromBytes builds a borrowed byte-string Blob.
func FromBytes(b []byte) Blob {
	return Blob{Bytes: b, Kind: Bytes, Owned: false}
}

// Cursor is a read position into a shared buffer, used by Deserialize so
// that a run of Blobs can be decoded without slicing the buffer anew for
// each one.
type Cursor struct {
	Buf []byte
	Pos int
}

func (c *Cursor) remaining() int { return len(c.Buf) - c.Pos }

// Serialize appends a length-prefixed, kind-tagged encoding of b to dst:
// kind:u8 | len:u64 | bytes. This is the on-the-wire Blob encoding used by
// the message packer.
func Serialize(dst []byte, b Blob) []byte {
	dst = append(dst, byte(b.Kind))
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b.Bytes)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, b.Bytes...)
	return dst
}

// SerializedSize returns the number of bytes Serialize(b) would append.
func SerializedSize(b Blob) int {
	return 1 + 8 + len(b.Bytes)
}

// Deserialize reads one kind-tagged, length-prefixed Blob from c, returning
// a Blob that borrows directly into c.Buf.
func Deserialize(c *Cursor) (Blob, error) {
	if c.remaining() < 9 {
		return Blob{}, hxerr.New(hxerr.MsgTruncated, "blob header truncated")
	}
	k := Kind(c.Buf[c.Pos])
	n := binary.LittleEndian.Uint64(c.Buf[c.Pos+1 : c.Pos+9])
	c.Pos += 9
	if uint64(c.remaining()) < n {
		return Blob{}, hxerr.New(hxerr.MsgTruncated, "blob body truncated")
	}
	b := c.Buf[c.Pos : c.Pos+int(n)]
	c.Pos += int(n)
	return Blob{Bytes: b, Kind: k, Owned: false}, nil
}
