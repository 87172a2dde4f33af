// Package arena implements the per-instance packed-buffer allocator: one
// fixed-capacity byte slab sized at open() time, reset at every flush
// boundary instead of returned to the garbage collector.
package arena

import (
	"github.com/c2h5oh/datasize"

	"github.com/ledgerwatch/hxhim/hxerr"
)

// Arena is not safe for concurrent use; the batch layer's per-instance lock
// already serializes access to it.
type Arena struct {
	buf      []byte
	pos      int
	capacity int
}

// Size computes the arena capacity from the three bounds named in the
// library's Options: max_bulk_ops * max_ops_per_bulk * max_item_size.
func Size(maxBulkOps, maxOpsPerBulk, maxItemSize int) datasize.ByteSize {
	return datasize.ByteSize(maxBulkOps * maxOpsPerBulk * maxItemSize)
}

// New allocates an arena of exactly capacity bytes.
func New(capacity datasize.ByteSize) *Arena {
	return &Arena{
		buf:      make([]byte, capacity),
		capacity: int(capacity),
	}
}

// Alloc returns an n-byte slice carved out of the arena's backing array.
// The slice is valid until the next Reset.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if a.pos+n > a.capacity {
		return nil, hxerr.New(hxerr.OutOfMemory, "arena exhausted")
	}
	b := a.buf[a.pos : a.pos+n : a.pos+n]
	a.pos += n
	return b, nil
}

// Reset rewinds the arena to empty. Call at every flush boundary.
func (a *Arena) Reset() {
	a.pos = 0
}

// Used reports the number of bytes currently carved out.
func (a *Arena) Used() int {
	return a.pos
}

// Remaining reports free bytes left before Alloc starts failing.
func (a *Arena) Remaining() int {
	return a.capacity - a.pos
}
