package hxhim

import (
	"sync"

	"github.com/ledgerwatch/hxhim/blob"
	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/ledgerwatch/hxhim/message"
)

// Result is one element of a response Chain: the status of one item from
// one bulk message, plus enough of the original triple to be useful
// without a second lookup.
type Result struct {
	Op            message.Op
	Status        message.Status
	OriginalIndex int
	DatastoreID   uint32
	Subject       blob.Blob
	Predicate     blob.Blob
	Object        blob.Blob
	Buckets       []message.Bucket
}

// Chain is the head of the response chain flush() returns. Advancing frees
// the head and returns its successor; result_next's "no more elements"
// case is a nil *Result with a nil error, while consuming an already
// exhausted chain is reported as RESULT_EXHAUSTED.
type Chain struct {
	mu        sync.Mutex
	results   []*Result
	pos       int
	exhausted bool
}

func newChain(results []*Result) *Chain {
	return &Chain{results: results}
}

// Next returns the next Result, or (nil, nil) once the chain is drained.
// Calling Next again after that returns RESULT_EXHAUSTED.
func (c *Chain) Next() (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pos < len(c.results) {
		r := c.results[c.pos]
		c.results[c.pos] = nil
		c.pos++
		return r, nil
	}
	if c.exhausted {
		return nil, hxerr.New(hxerr.ResultExhausted, "result chain already consumed")
	}
	c.exhausted = true
	return nil, nil
}

// Len reports the total number of elements the chain was built with,
// regardless of how much of it has been consumed.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
