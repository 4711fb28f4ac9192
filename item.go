package realtime

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/wirevox/realtime-go/events"
)

// OutputItem is one item of a response's output: a message or a
// function call.
type OutputItem interface {
	outputItem()
	ID() string
	ResponseID() string
	PreviousItemID() string
}

// MessageItem is an assistant message being generated. Recv yields
// its content parts in order.
type MessageItem struct {
	client     *Client
	responseID string
	previousID string

	mu   sync.Mutex
	item events.Item
	done bool
}

func newMessageItem(c *Client, responseID, previousID string, item events.Item) *MessageItem {
	return &MessageItem{client: c, responseID: responseID, previousID: previousID, item: item}
}

func (*MessageItem) outputItem() {}

func (m *MessageItem) ID() string             { return m.item.ID }
func (m *MessageItem) ResponseID() string     { return m.responseID }
func (m *MessageItem) PreviousItemID() string { return m.previousID }

func (m *MessageItem) Role() events.MessageRole {
	return m.item.Role
}

// Item is the latest item snapshot; final once Recv returned io.EOF.
func (m *MessageItem) Item() events.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.item
}

// Recv blocks until the server opens the next content part or
// finishes the item, returning io.EOF when done.
func (m *MessageItem) Recv(ctx context.Context) (Content, error) {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil, io.EOF
	}
	m.mu.Unlock()

	ev, err := m.client.items.Receive(ctx, m.item.ID, func(ev events.ServerEvent) bool {
		switch ev.(type) {
		case *events.ResponseContentPartAddedEvent, *events.ResponseOutputItemDoneEvent:
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if se, ok := asServerError(ev); ok {
		return nil, se
	}

	switch ev := ev.(type) {
	case *events.ResponseOutputItemDoneEvent:
		m.mu.Lock()
		m.item = ev.Item
		m.done = true
		m.mu.Unlock()
		return nil, io.EOF
	case *events.ResponseContentPartAddedEvent:
		switch ev.Part.Type {
		case events.ContentTypeText:
			return newTextContent(m.client, ev), nil
		case events.ContentTypeAudio:
			return newAudioContent(m.client, ev), nil
		default:
			return nil, fmt.Errorf("unexpected content part type %q", ev.Part.Type)
		}
	}
	return nil, fmt.Errorf("unexpected event %s", ev.EventType())
}

// FunctionCallItem is a tool call being generated. Its argument JSON
// can be consumed exactly once: either incrementally via Stream or as
// a whole via Wait; choosing one makes the other fail.
type FunctionCallItem struct {
	client     *Client
	responseID string
	previousID string

	mu       sync.Mutex
	item     events.Item
	streamed bool
	awaited  bool
	done     bool
}

func newFunctionCallItem(c *Client, responseID, previousID string, item events.Item) *FunctionCallItem {
	return &FunctionCallItem{client: c, responseID: responseID, previousID: previousID, item: item}
}

func (*FunctionCallItem) outputItem() {}

func (f *FunctionCallItem) ID() string             { return f.item.ID }
func (f *FunctionCallItem) ResponseID() string     { return f.responseID }
func (f *FunctionCallItem) PreviousItemID() string { return f.previousID }

func (f *FunctionCallItem) Name() string   { return f.item.Name }
func (f *FunctionCallItem) CallID() string { return f.item.CallID }

// Arguments is the argument JSON accumulated so far; authoritative
// once the item is done.
func (f *FunctionCallItem) Arguments() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.item.Arguments
}

// Stream begins incremental consumption of the argument deltas. It
// fails with ErrArgumentsAwaited after Wait was called.
func (f *FunctionCallItem) Stream() (*ArgumentStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.awaited {
		return nil, ErrArgumentsAwaited
	}
	f.streamed = true
	return &ArgumentStream{item: f}, nil
}

// Wait blocks until the arguments are complete and returns them. It
// fails with ErrArgumentsStreamed after Stream was called.
func (f *FunctionCallItem) Wait(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.streamed {
		f.mu.Unlock()
		return "", ErrArgumentsStreamed
	}
	f.awaited = true
	f.mu.Unlock()

	for {
		_, err := f.recvDelta(ctx)
		if err == io.EOF {
			return f.Arguments(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (f *FunctionCallItem) recvDelta(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return "", io.EOF
	}
	f.mu.Unlock()

	for {
		ev, err := f.client.items.Receive(ctx, f.item.ID, func(ev events.ServerEvent) bool {
			switch ev.(type) {
			case *events.ResponseFunctionCallArgumentsDeltaEvent,
				*events.ResponseFunctionCallArgumentsDoneEvent,
				*events.ResponseOutputItemDoneEvent:
				return true
			}
			return false
		})
		if err != nil {
			return "", err
		}
		if se, ok := asServerError(ev); ok {
			return "", se
		}
		switch ev := ev.(type) {
		case *events.ResponseOutputItemDoneEvent:
			f.mu.Lock()
			f.item = ev.Item
			f.done = true
			f.mu.Unlock()
			return "", io.EOF
		case *events.ResponseFunctionCallArgumentsDeltaEvent:
			f.mu.Lock()
			f.item.Arguments += ev.Delta
			f.mu.Unlock()
			return ev.Delta, nil
		case *events.ResponseFunctionCallArgumentsDoneEvent:
			// The item snapshot from output_item.done supersedes this.
			continue
		}
	}
}

// ArgumentStream yields argument JSON fragments in generation order,
// ending with io.EOF.
type ArgumentStream struct {
	item *FunctionCallItem
}

func (s *ArgumentStream) Recv(ctx context.Context) (string, error) {
	return s.item.recvDelta(ctx)
}
