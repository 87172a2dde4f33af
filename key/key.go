// Package key implements the subject+predicate key codec: joining the two
// into one ordered byte key, and splitting a key back into its components.
//
// The length fields and kind tags live in a fixed-size suffix rather than a
// leading header, so that two keys with identical subject bytes but
// differing predicate kinds never collide, and so that a key already
// sorted by (subject || predicate) bytes keeps that ordering — nothing
// about the variable-length prefix changes shape based on what follows it.
package key

import (
	"encoding/binary"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
)

// suffixSize is subject_len:u32 + predicate_len:u32 + subject_kind:u8 + predicate_kind:u8.
const suffixSize = 4 + 4 + 1 + 1

// Compose joins subject and predicate into one ordered key. When subject
// is numeric its bytes are expected to already be ELEN-encoded by the
// caller, so that the composed key sorts first by subject, then by
// predicate.
func Compose(subject, predicate blob.Blob) []byte {
	out := make([]byte, 0, len(subject.Bytes)+len(predicate.Bytes)+suffixSize)
	out = append(out, subject.Bytes...)
	out = append(out, predicate.Bytes...)

	var lens [8]byte
	binary.BigEndian.PutUint32(lens[0:4], uint32(len(subject.Bytes)))
	binary.BigEndian.PutUint32(lens[4:8], uint32(len(predicate.Bytes)))
	out = append(out, lens[:]...)
	out = append(out, byte(subject.Kind), byte(predicate.Kind))
	return out
}

// Split reverses Compose. With cp=false the returned Blobs borrow
// directly into key; with cp=true they are independently owned.
func Split(k []byte, cp bool) (subject, predicate blob.Blob, err error) {
	if len(k) < suffixSize {
		return blob.Blob{}, blob.Blob{}, hxerr.New(hxerr.KeyTooShort, "key shorter than suffix")
	}
	suffix := k[len(k)-suffixSize:]
	subjectLen := binary.BigEndian.Uint32(suffix[0:4])
	predicateLen := binary.BigEndian.Uint32(suffix[4:8])
	subjectKind := blob.Kind(suffix[8])
	predicateKind := blob.Kind(suffix[9])

	prefix := k[:len(k)-suffixSize]
	total := uint64(subjectLen) + uint64(predicateLen)
	if total > uint64(len(prefix)) {
		return blob.Blob{}, blob.Blob{}, hxerr.New(hxerr.KeyTooShort, "declared lengths overflow prefix")
	}

	subjectBytes := prefix[:subjectLen]
	predicateBytes := prefix[subjectLen : subjectLen+predicateLen]

	if cp {
		return blob.NewOwned(subjectBytes, subjectKind), blob.NewOwned(predicateBytes, predicateKind), nil
	}
	return blob.New(subjectBytes, subjectKind), blob.New(predicateBytes, predicateKind), nil
}
