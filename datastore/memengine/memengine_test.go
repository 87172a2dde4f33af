package memengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/hxhim/datastore"
)

func TestPutGetDelete(t *testing.T) {
	e := New(0)
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, []byte("k1"), []byte("v1")))
	v, found, err := e.Get(ctx, []byte("k1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, e.Delete(ctx, []byte("k1")))
	_, found, err = e.Get(ctx, []byte("k1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestScanAscendingOrdered(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	e.Put(ctx, []byte("b"), []byte("2"))
	e.Put(ctx, []byte("a"), []byte("1"))
	e.Put(ctx, []byte("c"), []byte("3"))

	var got []string
	e.Scan(ctx, nil, datastore.ScanAscending, 10, func(kv datastore.KV) bool {
		got = append(got, string(kv.Key))
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestScanRespectsLimit(t *testing.T) {
	e := New(0)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c", "d"} {
		e.Put(ctx, []byte(k), []byte("v"))
	}
	var got []string
	e.Scan(ctx, nil, datastore.ScanAscending, 2, func(kv datastore.KV) bool {
		got = append(got, string(kv.Key))
		return true
	})
	assert.Len(t, got, 2)
}

func TestScanEmptyTreeIsNoop(t *testing.T) {
	e := New(0)
	called := false
	e.Scan(context.Background(), nil, datastore.ScanAscending, 10, func(kv datastore.KV) bool {
		called = true
		return true
	})
	assert.False(t, called)
}
