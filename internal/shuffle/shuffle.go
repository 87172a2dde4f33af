// Package shuffle implements subject-hash routing: every triple lands on
// destination datastore h(subject) mod D, so all triples sharing a subject
// land on the same shard. It also keeps a dirty set of destinations that
// have been enqueued to since they were last marked clean
// (DirtyDestinations); Instance.Flush finds non-empty queues through
// batch.DrainAll and does not read that set.
package shuffle

import (
	"github.com/RoaringBitmap/roaring"
	"golang.org/x/crypto/blake2b"
)

// Router assigns subjects to one of D datastores and tracks which of them
// are "dirty" (hold unflushed items).
type Router struct {
	d                 uint32
	datastoresPerRank uint32
	dirty             *roaring.Bitmap
}

// New builds a Router over D = ranks * datastoresPerRank destinations.
func New(ranks, datastoresPerRank uint32) *Router {
	return &Router{
		d:                 ranks * datastoresPerRank,
		datastoresPerRank: datastoresPerRank,
		dirty:             roaring.New(),
	}
}

// Route returns the destination datastore id for subjectBytes.
func (r *Router) Route(subjectBytes []byte) uint32 {
	sum := blake2b.Sum256(subjectBytes)
	var h uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(sum[i])
	}
	return uint32(h % uint64(r.d))
}

// RankOf splits a datastore id into its owning rank and local index.
func (r *Router) RankOf(datastoreID uint32) (rank int32, local uint32) {
	return int32(datastoreID / r.datastoresPerRank), datastoreID % r.datastoresPerRank
}

// MarkDirty records that datastoreID now has at least one unflushed item.
func (r *Router) MarkDirty(datastoreID uint32) {
	r.dirty.Add(datastoreID)
}

// MarkClean clears the dirty flag for datastoreID, typically right after
// its queue has been drained and packaged into a bulk message.
func (r *Router) MarkClean(datastoreID uint32) {
	r.dirty.Remove(datastoreID)
}

// DirtyDestinations returns every destination currently holding unflushed
// items, in ascending order.
func (r *Router) DirtyDestinations() []uint32 {
	out := make([]uint32, 0, r.dirty.GetCardinality())
	it := r.dirty.Iterator()
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}

// D returns the total destination count.
func (r *Router) D() uint32 {
	return r.d
}
