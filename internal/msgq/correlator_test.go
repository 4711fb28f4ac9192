package msgq

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testKey(m testMsg) (string, bool) {
	if m.ID == "" {
		return "", false
	}
	return m.ID, true
}

func ctxChanSource(feed chan testMsg) CtxReceiveFunc[testMsg] {
	return func(ctx context.Context) (testMsg, error) {
		select {
		case m, ok := <-feed:
			if !ok {
				return testMsg{}, io.EOF
			}
			return m, nil
		case <-ctx.Done():
			return testMsg{}, ctx.Err()
		}
	}
}

func newTestCorrelator(feed chan testMsg) *Correlator[testMsg] {
	return NewCorrelator(ctxChanSource(feed), testKey, isTestError, nil)
}

func TestCorrelatorRoutesByKey(t *testing.T) {
	feed := make(chan testMsg, 8)
	feed <- testMsg{"a", "1"}
	feed <- testMsg{"b", "x"}
	feed <- testMsg{"a", "2"}
	c := newTestCorrelator(feed)

	m, err := c.Receive(context.Background(), "b", nil)
	require.NoError(t, err)
	require.Equal(t, "x", m.Content)

	m, err = c.Receive(context.Background(), "a", nil)
	require.NoError(t, err)
	require.Equal(t, "1", m.Content)
	m, err = c.Receive(context.Background(), "a", nil)
	require.NoError(t, err)
	require.Equal(t, "2", m.Content)
}

func TestCorrelatorPredicateWithinKey(t *testing.T) {
	feed := make(chan testMsg, 8)
	feed <- testMsg{"a", "skip"}
	feed <- testMsg{"a", "want"}
	c := newTestCorrelator(feed)

	m, err := c.Receive(context.Background(), "a", func(m testMsg) bool { return m.Content == "want" })
	require.NoError(t, err)
	require.Equal(t, "want", m.Content)

	// The skipped message stays buffered for its key.
	m, err = c.Receive(context.Background(), "a", nil)
	require.NoError(t, err)
	require.Equal(t, "skip", m.Content)
}

func TestCorrelatorDropsKeylessMessages(t *testing.T) {
	feed := make(chan testMsg, 8)
	feed <- testMsg{"", "orphan"}
	feed <- testMsg{"a", "1"}
	c := newTestCorrelator(feed)

	m, err := c.Receive(context.Background(), "a", nil)
	require.NoError(t, err)
	require.Equal(t, "1", m.Content)
}

func TestCorrelatorEndOfStream(t *testing.T) {
	feed := make(chan testMsg)
	c := newTestCorrelator(feed)

	results := make(chan error, 2)
	go func() {
		_, err := c.Receive(context.Background(), "a", nil)
		results <- err
	}()
	go func() {
		_, err := c.Receive(context.Background(), "b", nil)
		results <- err
	}()
	time.Sleep(10 * time.Millisecond)
	close(feed)

	require.ErrorIs(t, <-results, io.EOF)
	require.ErrorIs(t, <-results, io.EOF)

	_, err := c.Receive(context.Background(), "c", nil)
	require.ErrorIs(t, err, io.EOF)
}

func TestCorrelatorErrorReachesAllKeys(t *testing.T) {
	feed := make(chan testMsg, 1)
	c := newTestCorrelator(feed)

	type outcome struct {
		m   testMsg
		err error
	}
	results := make(chan outcome, 2)
	for _, key := range []string{"a", "b"} {
		key := key
		go func() {
			m, err := c.Receive(context.Background(), key, nil)
			results <- outcome{m, err}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	feed <- testMsg{"error", "boom"}

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.Equal(t, "error", r.m.ID)
	}

	// Latched for future receivers on any key.
	m, err := c.Receive(context.Background(), "z", nil)
	require.NoError(t, err)
	require.Equal(t, "error", m.ID)
}

func TestCorrelatorCancelledReceiver(t *testing.T) {
	feed := make(chan testMsg, 1)
	c := newTestCorrelator(feed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(ctx, "a", nil)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	feed <- testMsg{"a", "kept"}
	m, err := c.Receive(context.Background(), "a", nil)
	require.NoError(t, err)
	require.Equal(t, "kept", m.Content)
}

func TestCorrelatorPollStopsOnLastCancel(t *testing.T) {
	feed := make(chan testMsg, 2)
	c := newTestCorrelator(feed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(ctx, "a", nil)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// With no receivers left the poll goroutine winds down and stops
	// pulling from the source.
	time.Sleep(20 * time.Millisecond)
	feed <- testMsg{"a", "later"}
	time.Sleep(20 * time.Millisecond)
	require.Len(t, feed, 1)

	// A fresh receiver restarts polling and gets the message.
	m, err := c.Receive(context.Background(), "a", nil)
	require.NoError(t, err)
	require.Equal(t, "later", m.Content)
}
