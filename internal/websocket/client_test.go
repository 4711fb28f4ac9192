package websocket

import (
	"errors"
	"testing"

	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/require"
)

func newStubClient() *Client {
	return &Client{
		in:   make(chan []byte, 8),
		out:  make(chan wsutil.Message, 8),
		done: make(chan struct{}),
	}
}

func TestWriteQueuesWhileOpen(t *testing.T) {
	c := newStubClient()

	require.NoError(t, c.WriteText([]byte("hello")))
	msg := <-c.out
	require.Equal(t, "hello", string(msg.Payload))
}

func TestWriteFailsAfterClose(t *testing.T) {
	c := newStubClient()
	c.setDone(nil)

	err := c.WriteText([]byte("too late"))
	require.ErrorIs(t, err, ErrClosed)
}

func TestWriteSurfacesReadError(t *testing.T) {
	c := newStubClient()
	boom := errors.New("connection reset")
	c.setDone(boom)

	err := c.WriteText([]byte("too late"))
	require.ErrorIs(t, err, boom)
}
