package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"github.com/wirevox/realtime-go/events"
	"github.com/wirevox/realtime-go/internal/msgq"
)

// Content is one content part of a message item: text or audio.
type Content interface {
	contentPart()
	ItemID() string
	ContentIndex() int
}

func isContentPartDone(m events.ServerEvent) bool {
	_, ok := m.(*events.ResponseContentPartDoneEvent)
	return ok
}

func newPartQueue(c *Client, itemID string, contentIndex int) *msgq.SharedEndQueue[events.ServerEvent] {
	key := partKey(itemID, contentIndex)
	return msgq.NewSharedEnd(
		func(ctx context.Context) (events.ServerEvent, error) {
			return c.items.Receive(ctx, key, nil)
		},
		isErrorEvent,
		isContentPartDone,
	)
}

// TextContent accumulates a text part. Recv yields the text deltas;
// Text is authoritative once Recv returned io.EOF.
type TextContent struct {
	itemID       string
	contentIndex int
	queue        *msgq.SharedEndQueue[events.ServerEvent]

	mu   sync.Mutex
	part events.ContentPart
}

func newTextContent(c *Client, ev *events.ResponseContentPartAddedEvent) *TextContent {
	return &TextContent{
		itemID:       ev.ItemID,
		contentIndex: ev.ContentIndex,
		queue:        newPartQueue(c, ev.ItemID, ev.ContentIndex),
		part:         ev.Part,
	}
}

func (*TextContent) contentPart() {}

func (t *TextContent) ItemID() string    { return t.itemID }
func (t *TextContent) ContentIndex() int { return t.contentIndex }

func (t *TextContent) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.part.Text
}

// Recv returns the next text delta, ending with io.EOF when the part
// is done.
func (t *TextContent) Recv(ctx context.Context) (string, error) {
	for {
		m, err := t.queue.Receive(ctx, func(m events.ServerEvent) bool {
			switch m.(type) {
			case *events.ResponseTextDeltaEvent, *events.ResponseTextDoneEvent:
				return true
			}
			return false
		})
		if err != nil {
			return "", err
		}
		if se, ok := asServerError(m); ok {
			return "", se
		}
		switch m := m.(type) {
		case *events.ResponseContentPartDoneEvent:
			t.mu.Lock()
			t.part = m.Part
			t.mu.Unlock()
			return "", io.EOF
		case *events.ResponseTextDeltaEvent:
			return m.Delta, nil
		case *events.ResponseTextDoneEvent:
			// content_part.done supersedes this with the final part.
			continue
		default:
			return "", fmt.Errorf("unexpected event %s", m.EventType())
		}
	}
}

// AudioContent accumulates an audio part: PCM bytes and their
// transcript, as two independently consumable delta sequences that
// share the part's terminal event.
type AudioContent struct {
	itemID       string
	contentIndex int
	queue        *msgq.SharedEndQueue[events.ServerEvent]

	mu   sync.Mutex
	part events.ContentPart
}

func newAudioContent(c *Client, ev *events.ResponseContentPartAddedEvent) *AudioContent {
	return &AudioContent{
		itemID:       ev.ItemID,
		contentIndex: ev.ContentIndex,
		queue:        newPartQueue(c, ev.ItemID, ev.ContentIndex),
		part:         ev.Part,
	}
}

func (*AudioContent) contentPart() {}

func (a *AudioContent) ItemID() string    { return a.itemID }
func (a *AudioContent) ContentIndex() int { return a.contentIndex }

// Transcript is the transcript accumulated by the server;
// authoritative once either sequence returned io.EOF.
func (a *AudioContent) Transcript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.part.Transcript
}

// RecvAudio returns the next chunk of decoded PCM, ending with io.EOF
// when the part is done.
func (a *AudioContent) RecvAudio(ctx context.Context) ([]byte, error) {
	for {
		m, err := a.queue.Receive(ctx, func(m events.ServerEvent) bool {
			switch m.(type) {
			case *events.ResponseAudioDeltaEvent, *events.ResponseAudioDoneEvent:
				return true
			}
			return false
		})
		if err != nil {
			return nil, err
		}
		if se, ok := asServerError(m); ok {
			return nil, se
		}
		switch m := m.(type) {
		case *events.ResponseContentPartDoneEvent:
			a.mu.Lock()
			a.part = m.Part
			a.mu.Unlock()
			return nil, io.EOF
		case *events.ResponseAudioDeltaEvent:
			chunk, err := base64.StdEncoding.DecodeString(m.Delta)
			if err != nil {
				return nil, fmt.Errorf("decode audio delta: %w", err)
			}
			return chunk, nil
		case *events.ResponseAudioDoneEvent:
			// content_part.done supersedes this as the end signal.
			continue
		default:
			return nil, fmt.Errorf("unexpected event %s", m.EventType())
		}
	}
}

// RecvTranscript returns the next transcript delta, ending with
// io.EOF when the part is done.
func (a *AudioContent) RecvTranscript(ctx context.Context) (string, error) {
	for {
		m, err := a.queue.Receive(ctx, func(m events.ServerEvent) bool {
			switch m.(type) {
			case *events.ResponseAudioTranscriptDeltaEvent, *events.ResponseAudioTranscriptDoneEvent:
				return true
			}
			return false
		})
		if err != nil {
			return "", err
		}
		if se, ok := asServerError(m); ok {
			return "", se
		}
		switch m := m.(type) {
		case *events.ResponseContentPartDoneEvent:
			a.mu.Lock()
			a.part = m.Part
			a.mu.Unlock()
			return "", io.EOF
		case *events.ResponseAudioTranscriptDeltaEvent:
			return m.Delta, nil
		case *events.ResponseAudioTranscriptDoneEvent:
			continue
		default:
			return "", fmt.Errorf("unexpected event %s", m.EventType())
		}
	}
}
