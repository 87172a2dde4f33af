package datastore

import (
	"bytes"
	"context"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/histogram"
	"github.com/ledgerwatch/hxhim/message"
)

// sortedMapEngine is a minimal in-memory Engine used only to exercise the
// Executor's dispatch logic against a real ordered key space.
type sortedMapEngine struct {
	data map[string][]byte
}

func newSortedMapEngine() *sortedMapEngine {
	return &sortedMapEngine{data: make(map[string][]byte)}
}

func (e *sortedMapEngine) Put(ctx context.Context, key, value []byte) error {
	e.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (e *sortedMapEngine) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	v, ok := e.data[string(key)]
	return v, ok, nil
}

func (e *sortedMapEngine) Delete(ctx context.Context, key []byte) error {
	delete(e.data, string(key))
	return nil
}

func (e *sortedMapEngine) sortedKeys() []string {
	keys := make([]string, 0, len(e.data))
	for k := range e.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *sortedMapEngine) Scan(ctx context.Context, key []byte, direction ScanDirection, n int, yield func(KV) bool) error {
	keys := e.sortedKeys()
	if direction == ScanDescending {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	count := 0
	for _, k := range keys {
		if key != nil {
			if direction == ScanAscending && bytes.Compare([]byte(k), key) < 0 {
				continue
			}
			if direction == ScanDescending && bytes.Compare([]byte(k), key) > 0 {
				continue
			}
		}
		if count >= n {
			break
		}
		count++
		if !yield(KV{Key: []byte(k), Value: e.data[k]}) {
			break
		}
	}
	return nil
}

func (e *sortedMapEngine) Sync(ctx context.Context) error { return nil }
func (e *sortedMapEngine) Close() error                   { return nil }

func TestPutGetRoundTrip(t *testing.T) {
	eng := newSortedMapEngine()
	ex := NewExecutor(eng, false, nil)
	ctx := context.Background()

	status := ex.Put(ctx, "age", blob.NewOwned([]byte("alice"), blob.Bytes), blob.NewOwned([]byte("age"), blob.Bytes), blob.FromUint32(30))
	assert.Equal(t, message.StatusOK, status)

	obj, status := ex.Get(ctx, blob.NewOwned([]byte("alice"), blob.Bytes), blob.NewOwned([]byte("age"), blob.Bytes), blob.Uint32)
	require.Equal(t, message.StatusOK, status)
	v, err := obj.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(30), v)
}

func TestGetKindMismatch(t *testing.T) {
	eng := newSortedMapEngine()
	ex := NewExecutor(eng, false, nil)
	ctx := context.Background()
	ex.Put(ctx, "age", blob.NewOwned([]byte("alice"), blob.Bytes), blob.NewOwned([]byte("age"), blob.Bytes), blob.FromUint32(30))

	_, status := ex.Get(ctx, blob.NewOwned([]byte("alice"), blob.Bytes), blob.NewOwned([]byte("age"), blob.Bytes), blob.Int32)
	assert.Equal(t, message.StatusKindMismatch, status)
}

func TestDeleteMissingKeyIsNotFound(t *testing.T) {
	eng := newSortedMapEngine()
	ex := NewExecutor(eng, false, nil)
	ctx := context.Background()
	status := ex.Delete(ctx, blob.NewOwned([]byte("ghost"), blob.Bytes), blob.NewOwned([]byte("p"), blob.Bytes))
	assert.Equal(t, message.StatusNotFound, status)
}

func TestGetOpAscendingOrderOverSubjects(t *testing.T) {
	eng := newSortedMapEngine()
	ex := NewExecutor(eng, false, nil)
	ctx := context.Background()

	ex.Put(ctx, "v", blob.FromFloat64(-1.5), blob.NewOwned([]byte("v"), blob.Bytes), blob.FromUint32(1))
	ex.Put(ctx, "v", blob.FromFloat64(2.25), blob.NewOwned([]byte("v"), blob.Bytes), blob.FromUint32(2))

	negInf := blob.FromFloat64(math.Inf(-1))
	results, status := ex.GetOp(ctx, negInf, blob.NewOwned([]byte("v"), blob.Bytes), blob.Uint32, message.GT, 10)
	require.Equal(t, message.StatusOK, status)
	require.Len(t, results, 2)
	v0, _ := results[0].Object.Uint32()
	v1, _ := results[1].Object.Uint32()
	assert.Equal(t, uint32(1), v0)
	assert.Equal(t, uint32(2), v1)
}

func TestHistogramTrainingAndSnapshot(t *testing.T) {
	eng := newSortedMapEngine()
	ex := NewExecutor(eng, false, []HistogramRegistration{
		{PredicateName: "latency", Strategy: histogram.UniformLinear(4, 0, 100), TrainingSize: 3},
	})
	ctx := context.Background()
	ex.Put(ctx, "latency", blob.NewOwned([]byte("s"), blob.Bytes), blob.NewOwned([]byte("latency"), blob.Bytes), blob.FromFloat64(10))
	ex.Put(ctx, "latency", blob.NewOwned([]byte("s"), blob.Bytes), blob.NewOwned([]byte("latency"), blob.Bytes), blob.FromFloat64(55))
	ex.Put(ctx, "latency", blob.NewOwned([]byte("s"), blob.Bytes), blob.NewOwned([]byte("latency"), blob.Bytes), blob.FromFloat64(90))
	ex.Put(ctx, "latency", blob.NewOwned([]byte("s"), blob.Bytes), blob.NewOwned([]byte("latency"), blob.Bytes), blob.FromFloat64(40))

	buckets, status := ex.Histogram("latency")
	require.Equal(t, message.StatusOK, status)
	require.Len(t, buckets, 4)
	for _, b := range buckets {
		assert.Equal(t, uint64(1), b.Count)
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	eng := newSortedMapEngine()
	ex := NewExecutor(eng, true, nil)
	ctx := context.Background()
	payload := bytes.Repeat([]byte("hxhim"), 50)
	ex.Put(ctx, "blob", blob.NewOwned([]byte("s"), blob.Bytes), blob.NewOwned([]byte("blob"), blob.Bytes), blob.NewOwned(payload, blob.Bytes))

	obj, status := ex.Get(ctx, blob.NewOwned([]byte("s"), blob.Bytes), blob.NewOwned([]byte("blob"), blob.Bytes), blob.Bytes)
	require.Equal(t, message.StatusOK, status)
	assert.Equal(t, payload, obj.Bytes)
}
