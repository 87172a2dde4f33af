// Package local implements the same-process loopback Transport used when
// dst_rank == self_rank: Send enqueues directly onto this process's own
// Recv channel, with no serialization round-trip.
package local

import (
	"context"

	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/ledgerwatch/hxhim/transport"
)

// Transport is a single-rank loopback; Barrier is a no-op since there is
// only one participant.
type Transport struct {
	rank   int32
	inbox  chan transport.Envelope
	closed chan struct{}
}

// New returns a loopback Transport identifying itself as rank.
func New(rank int32, inboxSize int) *Transport {
	if inboxSize <= 0 {
		inboxSize = 256
	}
	return &Transport{
		rank:   rank,
		inbox:  make(chan transport.Envelope, inboxSize),
		closed: make(chan struct{}),
	}
}

func (t *Transport) Rank() int32 { return t.rank }

func (t *Transport) Send(ctx context.Context, dstRank int32, payload []byte) (transport.Token, error) {
	if dstRank != t.rank {
		return "", hxerr.New(hxerr.TransportError, "local transport cannot address another rank")
	}
	env := transport.Envelope{SrcRank: t.rank, Payload: payload}
	select {
	case t.inbox <- env:
		return transport.NewToken(), nil
	case <-ctx.Done():
		return "", hxerr.Wrap(hxerr.Timeout, "send blocked past deadline", ctx.Err())
	case <-t.closed:
		return "", hxerr.New(hxerr.TransportError, "transport closed")
	}
}

func (t *Transport) Recv(ctx context.Context) (transport.Envelope, error) {
	select {
	case env := <-t.inbox:
		return env, nil
	case <-ctx.Done():
		return transport.Envelope{}, hxerr.Wrap(hxerr.Timeout, "recv blocked past deadline", ctx.Err())
	case <-t.closed:
		return transport.Envelope{}, hxerr.New(hxerr.TransportError, "transport closed")
	}
}

func (t *Transport) Barrier(ctx context.Context) error {
	return nil
}

func (t *Transport) Close() error {
	close(t.closed)
	return nil
}
