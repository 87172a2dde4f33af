package blob

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func TestRoundTripScalars(t *testing.T) {
	f := fuzz.New()

	for i := 0; i < 200; i++ {
		var i32 int32
		var i64 int64
		var u32 uint32
		var u64 uint64
		var f32 float32
		var f64 float64
		f.Fuzz(&i32)
		f.Fuzz(&i64)
		f.Fuzz(&u32)
		f.Fuzz(&u64)
		f.Fuzz(&f32)
		f.Fuzz(&f64)

		got32, err := FromInt32(i32).Int32()
		require.NoError(t, err)
		require.Equal(t, i32, got32)

		got64, err := FromInt64(i64).Int64()
		require.NoError(t, err)
		require.Equal(t, i64, got64)

		gotU32, err := FromUint32(u32).Uint32()
		require.NoError(t, err)
		require.Equal(t, u32, gotU32)

		gotU64, err := FromUint64(u64).Uint64()
		require.NoError(t, err)
		require.Equal(t, u64, gotU64)
	}
}

func TestKindMismatch(t *testing.T) {
	b := FromInt32(7)
	_, err := b.Uint32()
	require.Error(t, err)
}

func TestCloneIsOwned(t *testing.T) {
	backing := []byte("alice")
	borrowed := New(backing, Bytes)
	require.False(t, borrowed.Owned)

	owned := borrowed.Clone()
	require.True(t, owned.Owned)
	backing[0] = 'X'
	require.Equal(t, byte('a'), owned.Bytes[0])
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	values := []Blob{
		FromBytes([]byte("hello")),
		Empty(Bytes),
		FromInt32(-42),
		FromUint64(1 << 40),
		FromFloat64(3.14159),
	}

	var buf []byte
	for _, v := range values {
		buf = Serialize(buf, v)
	}

	c := &Cursor{Buf: buf}
	for i, want := range values {
		got, err := Deserialize(c)
		require.NoError(t, err)
		if !reflect.DeepEqual(want.Kind, got.Kind) || !reflect.DeepEqual(want.Bytes, got.Bytes) {
			t.Fatalf("value %d round-tripped wrong:\nwant: %s\ngot:  %s", i, spew.Sdump(want), spew.Sdump(got))
		}
	}
	require.Equal(t, len(buf), c.Pos)
}

func TestDeserializeTruncated(t *testing.T) {
	c := &Cursor{Buf: []byte{byte(Bytes), 1, 0, 0}}
	_, err := Deserialize(c)
	require.Error(t, err)
}
