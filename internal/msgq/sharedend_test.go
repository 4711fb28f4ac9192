package msgq

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func sliceSource(msgs []testMsg) CtxReceiveFunc[testMsg] {
	var mu sync.Mutex
	i := 0
	return func(ctx context.Context) (testMsg, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(msgs) {
			return testMsg{}, io.EOF
		}
		m := msgs[i]
		i++
		return m, nil
	}
}

func isEnd(m testMsg) bool { return m.ID == "end" }

func newTestSharedEnd(msgs []testMsg) *SharedEndQueue[testMsg] {
	return NewSharedEnd(sliceSource(msgs), isTestError, isEnd)
}

// Both sub-streams must observe the shared terminal message exactly
// once each, whichever is driven first.
func TestSharedEndBothSidesSeeTerminal(t *testing.T) {
	for _, first := range []string{"audio", "transcript"} {
		msgs := []testMsg{
			{"audio", "a1"},
			{"transcript", "t1"},
			{"audio", "a2"},
			{"end", ""},
		}
		q := newTestSharedEnd(msgs)

		second := "transcript"
		if first == "transcript" {
			second = "audio"
		}

		var firstGot, secondGot []string
		for {
			m, err := q.Receive(context.Background(), byID(first))
			require.NoError(t, err)
			if isEnd(m) {
				break
			}
			firstGot = append(firstGot, m.Content)
		}
		for {
			m, err := q.Receive(context.Background(), byID(second))
			require.NoError(t, err)
			if isEnd(m) {
				break
			}
			secondGot = append(secondGot, m.Content)
		}

		all := append(append([]string{}, firstGot...), secondGot...)
		require.ElementsMatch(t, []string{"a1", "a2", "t1"}, all)
	}
}

func TestSharedEndErrorResolvesImmediately(t *testing.T) {
	msgs := []testMsg{
		{"transcript", "t1"},
		{"error", "boom"},
	}
	q := newTestSharedEnd(msgs)

	m, err := q.Receive(context.Background(), byID("audio"))
	require.NoError(t, err)
	require.Equal(t, "error", m.ID)
}

func TestSharedEndEndOfStream(t *testing.T) {
	q := newTestSharedEnd(nil)
	_, err := q.Receive(context.Background(), byID("audio"))
	require.ErrorIs(t, err, io.EOF)
}
