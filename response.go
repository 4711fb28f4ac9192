package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/wirevox/realtime-go/events"
)

// Response is an in-flight model response. Recv yields its output
// items as the server discovers them; the snapshot accessors reflect
// the latest server state and are final once Recv returned io.EOF.
type Response struct {
	client *Client

	mu       sync.Mutex
	response events.Response
	done     bool
}

func (c *Client) newResponse(r events.Response) *Response {
	return &Response{client: c, response: r}
}

func (*Response) serverTurn() {}

func (r *Response) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response.ID
}

func (r *Response) Status() events.ResponseStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response.Status
}

func (r *Response) StatusDetails() *events.ResponseStatusDetails {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response.StatusDetails
}

// Output is the accumulated output item snapshot.
func (r *Response) Output() []events.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response.Output
}

func (r *Response) Usage() *events.Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response.Usage
}

// Recv blocks until the server adds the next output item or finishes
// the response. It returns io.EOF once the response reached a
// terminal status (or the connection ended).
func (r *Response) Recv(ctx context.Context) (OutputItem, error) {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return nil, io.EOF
	}
	id := r.response.ID
	r.mu.Unlock()

	m, err := r.client.gate.Receive(ctx, func(m events.ServerEvent) bool {
		switch m := m.(type) {
		case *events.ResponseDoneEvent:
			return m.Response.ID == id
		case *events.ResponseOutputItemAddedEvent:
			return m.ResponseID == id
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
	case *events.ResponseDoneEvent:
		r.mu.Lock()
		r.response = m.Response
		r.done = true
		r.mu.Unlock()
		return nil, io.EOF

	case *events.ResponseOutputItemAddedEvent:
		// The creation acknowledgement carries the item's placement in
		// the conversation; wait for it before handing the item out.
		itemID := m.Item.ID
		created, err := r.client.gate.Receive(ctx, func(m events.ServerEvent) bool {
			c, ok := m.(*events.ConversationItemCreatedEvent)
			return ok && c.Item.ID == itemID
		})
		if err != nil {
			return nil, err
		}
		if se, ok := asServerError(created); ok {
			return nil, se
		}
		ack := created.(*events.ConversationItemCreatedEvent)
		switch ack.Item.Type {
		case events.ItemTypeMessage:
			return newMessageItem(r.client, id, ack.PreviousItemID, ack.Item), nil
		case events.ItemTypeFunctionCall:
			return newFunctionCallItem(r.client, id, ack.PreviousItemID, ack.Item), nil
		default:
			return nil, fmt.Errorf("unexpected output item type %q", ack.Item.Type)
		}
	}
	return nil, fmt.Errorf("unexpected event %s", m.EventType())
}

// Cancel asks the server to cancel the response and drains remaining
// items so the final status reflects the cancellation.
func (r *Response) Cancel(ctx context.Context) error {
	if err := r.client.transport.Send(ctx, events.NewResponseCancelEvent(r.ID())); err != nil {
		return fmt.Errorf("cancel response: %w", err)
	}
	for {
		_, err := r.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
