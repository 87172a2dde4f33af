package shuffle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/internal/batch"
	"github.com/ledgerwatch/hxhim/message"
)

func TestRouteIsDeterministic(t *testing.T) {
	r := New(4, 2)
	a := r.Route([]byte("alice"))
	b := r.Route([]byte("alice"))
	assert.Equal(t, a, b)
	assert.Less(t, a, r.D())
}

func TestRouteDistributesAcrossDestinations(t *testing.T) {
	r := New(4, 2)
	seen := map[uint32]bool{}
	for i := 0; i < 200; i++ {
		seen[r.Route([]byte{byte(i), byte(i >> 8)})] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestRankOfSplitsDatastoreID(t *testing.T) {
	r := New(4, 2)
	rank, local := r.RankOf(5)
	assert.Equal(t, int32(2), rank)
	assert.Equal(t, uint32(1), local)
}

func TestDirtyTracking(t *testing.T) {
	r := New(4, 2)
	r.MarkDirty(3)
	r.MarkDirty(1)
	assert.Equal(t, []uint32{1, 3}, r.DirtyDestinations())
	r.MarkClean(1)
	assert.Equal(t, []uint32{3}, r.DirtyDestinations())
}

func TestPackageBPut(t *testing.T) {
	items := []batch.Item{
		{Ref: batch.ItemRef{OriginalIndex: 0, DatastoreID: 0}, Subject: blob.NewOwned([]byte("s1"), blob.Bytes), Predicate: blob.NewOwned([]byte("p1"), blob.Bytes), Object: blob.FromUint32(1)},
		{Ref: batch.ItemRef{OriginalIndex: 2, DatastoreID: 0}, Subject: blob.NewOwned([]byte("s2"), blob.Bytes), Predicate: blob.NewOwned([]byte("p2"), blob.Bytes), Object: blob.FromUint32(2)},
	}
	msg, refs := Package(message.BPut, 0, 1, 0, items)
	req, ok := msg.(*message.BPutRequest)
	require.True(t, ok)
	assert.Equal(t, uint64(2), req.Count)
	assert.Equal(t, []batch.ItemRef{{OriginalIndex: 0, DatastoreID: 0}, {OriginalIndex: 2, DatastoreID: 0}}, refs)
}
