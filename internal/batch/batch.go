// Package batch implements the client-side per-operation, per-destination
// staging queues: append-only buffers that hold pending items until either
// a threshold promotes a queue to a bulk message, or flush drains all of
// them.
package batch

import (
	"sync"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/message"
)

// DefaultMaxOpsPerBulk is the per-(op, destination) promotion threshold.
const DefaultMaxOpsPerBulk = 64

// ItemRef is the client-side-only correlation pair kept alongside every
// queued item. It never travels on the wire: response items come back as
// plain positional arrays (spec.md's literal per-op wire tails carry no
// original_index field), and the caller reconstructs (original_index,
// datastore_id) by zipping the response array with the ItemRef list that
// was retained when the corresponding request was built.
type ItemRef struct {
	OriginalIndex int
	DatastoreID   uint32
}

// Item is one pending triple/operation plus its GETOP parameters, queued
// until promotion or flush.
type Item struct {
	Ref        ItemRef
	Subject    blob.Blob
	Predicate  blob.Blob
	Object     blob.Blob
	ObjectKind blob.Kind
	Comparator message.Comparator
	NRecords   uint64
	Name       string // BHISTOGRAM predicate name
}

type queueKey struct {
	op Op
	d  uint32
}

// Op identifies which per-(op, destination) queue an item belongs in.
// It mirrors message.Op but is declared locally so batch doesn't need to
// special-case BSync's datastore-only shape when keying queues.
type Op = message.Op

// Batch holds every Q[op][d] queue for one instance.
type Batch struct {
	mu            sync.Mutex
	maxOpsPerBulk int
	queues        map[queueKey][]Item
}

// New creates an empty Batch with the given per-queue promotion threshold.
func New(maxOpsPerBulk int) *Batch {
	if maxOpsPerBulk <= 0 {
		maxOpsPerBulk = DefaultMaxOpsPerBulk
	}
	return &Batch{
		maxOpsPerBulk: maxOpsPerBulk,
		queues:        make(map[queueKey][]Item),
	}
}

// Enqueue appends item to Q[op][d] and reports whether that queue just hit
// the promotion threshold. The caller should, on true, call Drain for
// (op, d) and hand the result to the shuffle stage.
func (b *Batch) Enqueue(op Op, datastoreID uint32, item Item) (promote bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := queueKey{op: op, d: datastoreID}
	b.queues[k] = append(b.queues[k], item)
	return len(b.queues[k]) >= b.maxOpsPerBulk
}

// Drain removes and returns every item queued for (op, d).
func (b *Batch) Drain(op Op, datastoreID uint32) []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := queueKey{op: op, d: datastoreID}
	items := b.queues[k]
	delete(b.queues, k)
	return items
}

// DrainAll empties every non-empty queue, regardless of threshold, for
// flush(). The returned map is keyed by (op, destination datastore id).
func (b *Batch) DrainAll() map[Op]map[uint32][]Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[Op]map[uint32][]Item)
	for k, items := range b.queues {
		if len(items) == 0 {
			continue
		}
		if out[k.op] == nil {
			out[k.op] = make(map[uint32][]Item)
		}
		out[k.op][k.d] = items
	}
	b.queues = make(map[queueKey][]Item)
	return out
}

// Pending reports the total number of items across all queues.
func (b *Batch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, items := range b.queues {
		total += len(items)
	}
	return total
}
