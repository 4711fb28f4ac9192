package msgq

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	ID      string
	Content string
}

// chanSource feeds messages from a channel; closing the channel ends
// the stream.
func chanSource(feed chan testMsg) ReceiveFunc[testMsg] {
	return func() (testMsg, error) {
		m, ok := <-feed
		if !ok {
			return testMsg{}, io.EOF
		}
		return m, nil
	}
}

func byID(id string) Predicate[testMsg] {
	return func(m testMsg) bool { return m.ID == id }
}

func TestQueueReceiveBuffered(t *testing.T) {
	feed := make(chan testMsg, 4)
	q := New(chanSource(feed))

	q.Requeue(testMsg{"1", "Hello"})

	m, err := q.Receive(context.Background(), byID("1"))
	require.NoError(t, err)
	require.Equal(t, "Hello", m.Content)
	require.Equal(t, 0, q.Buffered())
}

func TestQueueReceiveFromSource(t *testing.T) {
	feed := make(chan testMsg, 4)
	feed <- testMsg{"2", "World"}
	q := New(chanSource(feed))

	m, err := q.Receive(context.Background(), byID("2"))
	require.NoError(t, err)
	require.Equal(t, "World", m.Content)
}

func TestQueueBufferedOutOfOrder(t *testing.T) {
	feed := make(chan testMsg, 4)
	q := New(chanSource(feed))
	q.Requeue(testMsg{"1", "First"})
	q.Requeue(testMsg{"2", "Second"})
	q.Requeue(testMsg{"3", "Third"})

	m, err := q.Receive(context.Background(), byID("2"))
	require.NoError(t, err)
	require.Equal(t, "Second", m.Content)
	m, err = q.Receive(context.Background(), byID("1"))
	require.NoError(t, err)
	require.Equal(t, "First", m.Content)
	m, err = q.Receive(context.Background(), byID("3"))
	require.NoError(t, err)
	require.Equal(t, "Third", m.Content)
	require.Equal(t, 0, q.Buffered())
}

func TestQueueArrivalOrderPerPredicate(t *testing.T) {
	feed := make(chan testMsg, 8)
	q := New(chanSource(feed))
	feed <- testMsg{"a", "1"}
	feed <- testMsg{"b", "x"}
	feed <- testMsg{"a", "2"}
	feed <- testMsg{"a", "3"}
	close(feed)

	var got []string
	for {
		m, err := q.Receive(context.Background(), byID("a"))
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, m.Content)
	}
	require.Equal(t, []string{"1", "2", "3"}, got)

	// The unmatched message is still buffered and receivable.
	m, err := q.Receive(context.Background(), byID("b"))
	require.NoError(t, err)
	require.Equal(t, "x", m.Content)
}

func TestQueueEndOfStream(t *testing.T) {
	feed := make(chan testMsg)
	q := New(chanSource(feed))

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := q.Receive(context.Background(), byID("1"))
			results <- err
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(feed)

	require.ErrorIs(t, <-results, io.EOF)
	require.ErrorIs(t, <-results, io.EOF)

	// Post-end-of-stream receive also resolves immediately.
	_, err := q.Receive(context.Background(), byID("2"))
	require.ErrorIs(t, err, io.EOF)
}

func TestQueueSourceFailure(t *testing.T) {
	boom := errors.New("connection reset")
	q := New(func() (testMsg, error) { return testMsg{}, boom })

	_, err := q.Receive(context.Background(), byID("1"))
	require.ErrorIs(t, err, boom)
}

func TestQueueAtMostOneWaiterPerMessage(t *testing.T) {
	feed := make(chan testMsg, 1)
	q := New(chanSource(feed))

	results := make(chan error, 2)
	var delivered sync.Map
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			m, err := q.Receive(context.Background(), byID("1"))
			if err == nil {
				delivered.Store(i, m)
			}
			results <- err
		}()
	}
	time.Sleep(10 * time.Millisecond)
	feed <- testMsg{"1", "Shared"}
	time.Sleep(10 * time.Millisecond)
	close(feed)

	errs := []error{<-results, <-results}
	count := 0
	delivered.Range(func(_, _ any) bool { count++; return true })
	require.Equal(t, 1, count, "message must be delivered to exactly one waiter")
	require.Contains(t, errs, io.EOF)
}

func TestQueuePollingStopsWhenNoReceivers(t *testing.T) {
	feed := make(chan testMsg, 4)
	feed <- testMsg{"1", "First"}
	feed <- testMsg{"2", "Second"}
	q := New(chanSource(feed))

	m, err := q.Receive(context.Background(), byID("1"))
	require.NoError(t, err)
	require.Equal(t, "First", m.Content)

	m, err = q.Receive(context.Background(), byID("2"))
	require.NoError(t, err)
	require.Equal(t, "Second", m.Content)
}

func TestQueueCancelledReceiver(t *testing.T) {
	feed := make(chan testMsg, 1)
	q := New(chanSource(feed))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.Receive(ctx, byID("1"))
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// The message was not lost to the cancelled receiver.
	feed <- testMsg{"1", "kept"}
	m, err := q.Receive(context.Background(), byID("1"))
	require.NoError(t, err)
	require.Equal(t, "kept", m.Content)
}

func isTestError(m testMsg) bool { return m.ID == "error" }

func TestErrorQueueLatchesForAllReceivers(t *testing.T) {
	feed := make(chan testMsg, 1)
	q := NewWithError(chanSource(feed), isTestError)

	type outcome struct {
		m   testMsg
		err error
	}
	results := make(chan outcome, 3)
	for _, id := range []string{"a", "b", "c"} {
		id := id
		go func() {
			m, err := q.Receive(context.Background(), byID(id))
			results <- outcome{m, err}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	feed <- testMsg{"error", "bad request"}

	for i := 0; i < 3; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.Equal(t, "error", r.m.ID)
		require.Equal(t, "bad request", r.m.Content)
	}

	// Future receives return the latched error without touching the
	// source again.
	m, err := q.Receive(context.Background(), byID("d"))
	require.NoError(t, err)
	require.Equal(t, "error", m.ID)
	require.Empty(t, feed)
}

func TestErrorQueueErrorBeatsLaterMatches(t *testing.T) {
	feed := make(chan testMsg, 2)
	q := NewWithError(chanSource(feed), isTestError)

	type outcome struct {
		m   testMsg
		err error
	}
	results := make(chan outcome, 2)
	for _, id := range []string{"a", "b"} {
		id := id
		go func() {
			m, err := q.Receive(context.Background(), byID(id))
			results <- outcome{m, err}
		}()
	}
	time.Sleep(10 * time.Millisecond)

	// The error arrives immediately followed by a message matching a
	// pending receiver; neither receiver may see the later message.
	feed <- testMsg{"error", "boom"}
	feed <- testMsg{"b", "post-error traffic"}

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.Equal(t, "error", r.m.ID)
	}

	// The post-error message was never pulled past the latch.
	require.Len(t, feed, 1)
}

func TestErrorQueuePassesMatchesBeforeError(t *testing.T) {
	feed := make(chan testMsg, 4)
	feed <- testMsg{"1", "ok"}
	q := NewWithError(chanSource(feed), isTestError)

	m, err := q.Receive(context.Background(), byID("1"))
	require.NoError(t, err)
	require.Equal(t, "ok", m.Content)
}
