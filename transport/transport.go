// Package transport defines the send/recv/barrier contract the rest of
// hxhim depends on, plus a send-token type used to track a submitted
// message's lifecycle through the pool it was handed to.
package transport

import (
	"context"

	"github.com/pborman/uuid"
)

// Kind selects which concrete Transport a process uses. NULL backs tests
// and single-process instances; Local and GRPC are the two implemented
// adapters. MPI/THALLIUM (named in the source's two competing header
// sets) are not implemented here — named as future external backends.
type Kind int

const (
	KindNull Kind = iota
	KindLocal
	KindGRPC
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "LOCAL"
	case KindGRPC:
		return "GRPC"
	default:
		return "NULL"
	}
}

// Token identifies one in-flight Send call, returned so a caller can
// correlate a later completion notification without blocking.
type Token string

// NewToken mints a fresh send-token.
func NewToken() Token {
	return Token(uuid.New())
}

// Envelope is the unit exchanged by Send/Recv: an already-packed
// message.Pack() buffer plus the rank that produced it.
type Envelope struct {
	SrcRank int32
	Payload []byte
}

// Transport is implemented by transport/local and transport/remote. The
// transport is allowed to reorder messages between different (src, dst)
// pairs but must preserve order within one pair.
type Transport interface {
	// Send submits payload to dstRank and returns a token identifying the
	// submission; it does not block on the remote's response.
	Send(ctx context.Context, dstRank int32, payload []byte) (Token, error)

	// Recv blocks until the next inbound envelope is available or ctx is
	// done.
	Recv(ctx context.Context) (Envelope, error)

	// Barrier blocks until every rank has reached the same barrier call.
	Barrier(ctx context.Context) error

	// Rank reports this process's own rank.
	Rank() int32

	// Close releases any resources the transport holds.
	Close() error
}
