package datastore

import (
	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/elen"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// elenEncode rewrites a numeric Blob's bytes into ELEN's order-preserving
// form, keeping its Kind tag so key.Compose/Split still round-trip the
// original type. Byte-string blobs pass through unchanged: they are
// already their own ordered byte representation.
func elenEncode(b blob.Blob) (blob.Blob, error) {
	switch b.Kind {
	case blob.Bytes, blob.Pointer:
		return b, nil
	case blob.Int32:
		v, err := b.Int32()
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.New(elen.EncodeInt32(v), b.Kind), nil
	case blob.Int64:
		x, err := b.Int64()
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.New(elen.EncodeInt64(x), b.Kind), nil
	case blob.Uint32:
		x, err := b.Uint32()
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.New(elen.EncodeUint32(x), b.Kind), nil
	case blob.Uint64:
		x, err := b.Uint64()
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.New(elen.EncodeUint64(x), b.Kind), nil
	case blob.Float32:
		x, err := b.Float32()
		if err != nil {
			return blob.Blob{}, err
		}
		enc, err := elen.EncodeFloat32(x)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.New(enc, b.Kind), nil
	case blob.Float64:
		x, err := b.Float64()
		if err != nil {
			return blob.Blob{}, err
		}
		enc, err := elen.EncodeFloat64(x)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.New(enc, b.Kind), nil
	default:
		return blob.Blob{}, hxerr.New(hxerr.KindMismatch, "unknown kind")
	}
}

// elenDecode reverses elenEncode, reconstructing a native-byte-order Blob
// from its ELEN-encoded key bytes.
func elenDecode(b blob.Blob) (blob.Blob, error) {
	switch b.Kind {
	case blob.Bytes, blob.Pointer:
		return b, nil
	case blob.Int32:
		v, err := elen.DecodeInt32(b.Bytes)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.FromInt32(v), nil
	case blob.Int64:
		v, err := elen.DecodeInt64(b.Bytes)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.FromInt64(v), nil
	case blob.Uint32:
		v, err := elen.DecodeUint32(b.Bytes)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.FromUint32(v), nil
	case blob.Uint64:
		v, err := elen.DecodeUint64(b.Bytes)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.FromUint64(v), nil
	case blob.Float32:
		v, err := elen.DecodeFloat32(b.Bytes)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.FromFloat32(v), nil
	case blob.Float64:
		v, err := elen.DecodeFloat64(b.Bytes)
		if err != nil {
			return blob.Blob{}, err
		}
		return blob.FromFloat64(v), nil
	default:
		return blob.Blob{}, hxerr.New(hxerr.KindMismatch, "unknown kind")
	}
}
