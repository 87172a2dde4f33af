package elen

import (
	"bytes"
	"math"
	"sort"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/stretchr/testify/require"
)

func TestInt32RoundTripAndOrder(t *testing.T) {
	f := fuzz.New()
	vals := make([]int32, 300)
	for i := range vals {
		f.Fuzz(&vals[i])
	}

	for _, v := range vals {
		got, err := DecodeInt32(EncodeInt32(v))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	sorted := append([]int32(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	encoded := make([][]byte, len(sorted))
	for i, v := range sorted {
		encoded[i] = EncodeInt32(v)
	}
	for i := 1; i < len(encoded); i++ {
		require.LessOrEqual(t, bytes.Compare(encoded[i-1], encoded[i]), 0)
	}
}

func TestInt64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64, -12345, 67890} {
		got, err := DecodeInt64(EncodeInt64(v))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestUintOrderPreserving(t *testing.T) {
	a := EncodeUint64(10)
	b := EncodeUint64(1_000_000)
	require.Less(t, bytes.Compare(a, b), 0)
}

func TestSignedOrderAcrossZero(t *testing.T) {
	neg := EncodeInt64(-5)
	zero := EncodeInt64(0)
	pos := EncodeInt64(5)
	require.Less(t, bytes.Compare(neg, zero), 0)
	require.Less(t, bytes.Compare(zero, pos), 0)
}

func TestFloat64RoundTripAndOrder(t *testing.T) {
	vals := []float64{-1.5, 2.25, 0, -0.0, 1e300, -1e300, 3.14159, -3.14159, math.SmallestNonzeroFloat64}
	for _, v := range vals {
		enc, err := EncodeFloat64(v)
		require.NoError(t, err)
		got, err := DecodeFloat64(enc)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	encNeg, _ := EncodeFloat64(-1.5)
	encPos, _ := EncodeFloat64(2.25)
	require.Less(t, bytes.Compare(encNeg, encPos), 0)
}

func TestFloat64SignedZeroCollapses(t *testing.T) {
	pos, err := EncodeFloat64(0.0)
	require.NoError(t, err)
	neg, err := EncodeFloat64(math.Copysign(0, -1))
	require.NoError(t, err)
	require.Equal(t, pos, neg)
}

func TestFloat64RejectsNaN(t *testing.T) {
	_, err := EncodeFloat64(math.NaN())
	require.Error(t, err)
	require.Equal(t, hxerr.EncodeNaN, hxerr.CodeOf(err))
}

func TestFloat32RoundTrip(t *testing.T) {
	vals := []float32{-1.5, 2.25, 0, 100.5, -100.5}
	for _, v := range vals {
		enc, err := EncodeFloat32(v)
		require.NoError(t, err)
		got, err := DecodeFloat32(enc)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDecodeEmptyAndTrailing(t *testing.T) {
	_, err := DecodeInt32(nil)
	require.Equal(t, hxerr.EncodeEmpty, hxerr.CodeOf(err))

	_, err = DecodeInt32([]byte{1, 2, 3})
	require.Equal(t, hxerr.EncodeTrailing, hxerr.CodeOf(err))

	_, err = DecodeInt32([]byte{1, 2, 3, 4, 5})
	require.Equal(t, hxerr.EncodeTrailing, hxerr.CodeOf(err))
}

func TestDecimalStringRoundTrip(t *testing.T) {
	cases := []string{"0", "123", "-123", "123.45", "-123.45", "0.001", "-0.001"}
	for _, c := range cases {
		enc, err := EncodeDecimalString(c)
		require.NoError(t, err)
		got, err := DecodeDecimalString(enc)
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
}

func TestDecimalStringOrderPreserving(t *testing.T) {
	a, err := EncodeDecimalString("-100")
	require.NoError(t, err)
	b, err := EncodeDecimalString("-5")
	require.NoError(t, err)
	c, err := EncodeDecimalString("5")
	require.NoError(t, err)
	d, err := EncodeDecimalString("100")
	require.NoError(t, err)

	require.Less(t, bytes.Compare(a, b), 0)
	require.Less(t, bytes.Compare(b, c), 0)
	require.Less(t, bytes.Compare(c, d), 0)
}

func TestDecimalStringEmpty(t *testing.T) {
	_, err := EncodeDecimalString("")
	require.Equal(t, hxerr.EncodeEmpty, hxerr.CodeOf(err))

	_, err = DecodeDecimalString(nil)
	require.Equal(t, hxerr.EncodeEmpty, hxerr.CodeOf(err))
}
