package key

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/elen"
	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/stretchr/testify/require"
)

func TestComposeSplitRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for i := 0; i < 200; i++ {
		var s, p []byte
		f.Fuzz(&s)
		f.Fuzz(&p)

		subject := blob.New(s, blob.Bytes)
		predicate := blob.New(p, blob.Bytes)

		k := Compose(subject, predicate)
		gotSubject, gotPredicate, err := Split(k, false)
		require.NoError(t, err)
		require.Equal(t, subject.Bytes, gotSubject.Bytes)
		require.Equal(t, subject.Kind, gotSubject.Kind)
		require.Equal(t, predicate.Bytes, gotPredicate.Bytes)
		require.Equal(t, predicate.Kind, gotPredicate.Kind)
	}
}

func TestSplitBorrowsIntoKey(t *testing.T) {
	k := Compose(blob.New([]byte("alice"), blob.Bytes), blob.New([]byte("age"), blob.Bytes))
	subject, _, err := Split(k, false)
	require.NoError(t, err)
	require.False(t, subject.Owned)

	k[0] = 'X'
	require.Equal(t, byte('X'), subject.Bytes[0])
}

func TestSplitCopyIsIndependent(t *testing.T) {
	k := Compose(blob.New([]byte("alice"), blob.Bytes), blob.New([]byte("age"), blob.Bytes))
	subject, _, err := Split(k, true)
	require.NoError(t, err)
	require.True(t, subject.Owned)

	k[0] = 'X'
	require.Equal(t, byte('a'), subject.Bytes[0])
}

func TestEmptySubjectIsWellDefined(t *testing.T) {
	k := Compose(blob.Empty(blob.Bytes), blob.New([]byte("p"), blob.Bytes))
	subject, predicate, err := Split(k, false)
	require.NoError(t, err)
	require.Equal(t, 0, subject.Len())
	require.Equal(t, []byte("p"), predicate.Bytes)
}

func TestSplitTooShort(t *testing.T) {
	_, _, err := Split([]byte{1, 2, 3}, false)
	require.Equal(t, hxerr.KeyTooShort, hxerr.CodeOf(err))
}

func TestSplitOverflowingLengths(t *testing.T) {
	k := Compose(blob.New([]byte("alice"), blob.Bytes), blob.New([]byte("age"), blob.Bytes))
	// Corrupt the subject length field to claim more bytes than exist.
	k[len(k)-suffixSize] = 0xFF
	_, _, err := Split(k, false)
	require.Equal(t, hxerr.KeyTooShort, hxerr.CodeOf(err))
}

func TestSortsBySubjectThenPredicate(t *testing.T) {
	encA, err := elen.EncodeFloat64(-1.5)
	require.NoError(t, err)
	encB, err := elen.EncodeFloat64(2.25)
	require.NoError(t, err)

	kA := Compose(blob.New(encA, blob.Float64), blob.New([]byte("v"), blob.Bytes))
	kB := Compose(blob.New(encB, blob.Float64), blob.New([]byte("v"), blob.Bytes))

	require.Less(t, compareBytes(kA, kB), 0)
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
