package blob

// Kind tags the type a Blob's bytes should be interpreted as.
type Kind uint8

const (
	// Bytes is an untyped byte string; no numeric reinterpretation applies.
	Bytes Kind = iota
	Int32
	Int64
	Uint32
	Uint64
	Float32
	Float64
	// Pointer is an opaque fixed-width handle, never ELEN-encoded.
	Pointer
)

func (k Kind) String() string {
	switch k {
	case Bytes:
		return "bytes"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Uint32:
		return "u32"
	case Uint64:
		return "u64"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Pointer:
		return "ptr"
	default:
		return "unknown"
	}
}

// Numeric reports whether Kind names a scalar numeric type, i.e. one ELEN
// can encode into an order-preserving key and a histogram can bucket.
func (k Kind) Numeric() bool {
	switch k {
	case Int32, Int64, Uint32, Uint64, Float32, Float64:
		return true
	default:
		return false
	}
}

// FixedSize returns the in-memory size of one value of Kind, or 0 if the
// kind is variable-length (Bytes).
func (k Kind) FixedSize() int {
	switch k {
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Pointer:
		return 8
	default:
		return 0
	}
}
