package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerwatch/hxhim/transport"
)

type staticBook map[int32]string

func (b staticBook) Address(rank int32) (string, error) {
	return b[rank], nil
}

func TestSendRecvOverLoopback(t *testing.T) {
	serverAddr := "127.0.0.1:0"
	srv, err := New(1, serverAddr, nil)
	require.NoError(t, err)
	defer srv.Close()

	actualAddr := srv.listener.Addr().String()
	book := staticBook{1: actualAddr}

	client, err := New(0, "127.0.0.1:0", book)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = client.Send(ctx, 1, []byte("payload"))
	require.NoError(t, err)

	env, err := srv.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), env.Payload)
}

var _ transport.Transport = (*Transport)(nil)
