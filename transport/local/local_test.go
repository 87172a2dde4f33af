package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/hxhim/hxerr"
	"github.com/ledgerwatch/hxhim/transport"
)

func TestSendRecvRoundTrip(t *testing.T) {
	tr := New(0, 4)
	defer tr.Close()
	ctx := context.Background()

	_, err := tr.Send(ctx, 0, []byte("hello"))
	require.NoError(t, err)

	env, err := tr.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), env.Payload)
	assert.Equal(t, int32(0), env.SrcRank)
}

func TestSendToOtherRankFails(t *testing.T) {
	tr := New(0, 4)
	defer tr.Close()
	_, err := tr.Send(context.Background(), 1, []byte("x"))
	require.Error(t, err)
	assert.Equal(t, hxerr.TransportError, hxerr.CodeOf(err))
}

func TestRecvRespectsContextDeadline(t *testing.T) {
	tr := New(0, 1)
	defer tr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := tr.Recv(ctx)
	require.Error(t, err)
	assert.Equal(t, hxerr.Timeout, hxerr.CodeOf(err))
}

var _ transport.Transport = (*Transport)(nil)
