// Package realtime is a client engine for the realtime
// speech/text/tool-calling API: one duplex connection carrying an
// interleaved event stream is demultiplexed into per-entity streams
// (responses, items, content parts) that can be awaited and iterated
// independently.
package realtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/wirevox/realtime-go/events"
	"github.com/wirevox/realtime-go/internal/msgq"
)

// Client owns the connection and the demultiplexing state. All
// methods are safe for concurrent use.
type Client struct {
	config    *clientConfig
	transport Transport
	logger    *slog.Logger

	gate  *msgq.ErrorQueue[events.ServerEvent]
	items *msgq.Correlator[events.ServerEvent]

	mu         sync.Mutex
	session    *events.Session
	rateLimits []events.RateLimit
}

// New builds a client; call Connect to establish the session.
func New(opts ...ClientOption) *Client {
	config := &clientConfig{}
	withDefaults()(config)
	WithOptions(opts...)(config)

	c := &Client{
		config: config,
		logger: config.logger,
	}
	return c
}

// NewWithTransport builds a client over an existing connection,
// e.g. a middle-tier relay. Connect still waits for session.created.
func NewWithTransport(t Transport, opts ...ClientOption) *Client {
	c := New(opts...)
	c.transport = t
	c.initQueues()
	return c
}

func (c *Client) initQueues() {
	c.gate = msgq.NewWithError(c.receiveOne, isErrorEvent)
	c.items = msgq.NewCorrelator(
		func(ctx context.Context) (events.ServerEvent, error) {
			return c.gate.Receive(ctx, isItemScoped)
		},
		itemScopeKey,
		isErrorEvent,
		c.logger,
	)
}

// receiveOne is the single reader of the transport. Session-level
// control traffic that belongs to no entity is absorbed here.
func (c *Client) receiveOne() (events.ServerEvent, error) {
	for {
		m, err := c.transport.Recv(context.Background())
		if err != nil {
			return nil, err
		}
		switch m := m.(type) {
		case *events.RateLimitsUpdatedEvent:
			c.mu.Lock()
			c.rateLimits = m.RateLimits
			c.mu.Unlock()
			continue
		case *events.UnknownEvent:
			c.logger.Debug("ignoring unknown server event", slog.String("type", m.Type))
			continue
		}
		return m, nil
	}
}

func isErrorEvent(m events.ServerEvent) bool {
	_, ok := m.(*events.ErrorEvent)
	return ok
}

// isItemScoped selects the traffic routed through the item
// correlator: everything consumed below the response level.
func isItemScoped(m events.ServerEvent) bool {
	switch m.(type) {
	case *events.ResponseOutputItemDoneEvent,
		*events.ResponseContentPartAddedEvent,
		*events.ResponseContentPartDoneEvent,
		*events.ResponseTextDeltaEvent,
		*events.ResponseTextDoneEvent,
		*events.ResponseAudioDeltaEvent,
		*events.ResponseAudioDoneEvent,
		*events.ResponseAudioTranscriptDeltaEvent,
		*events.ResponseAudioTranscriptDoneEvent,
		*events.ResponseFunctionCallArgumentsDeltaEvent,
		*events.ResponseFunctionCallArgumentsDoneEvent:
		return true
	}
	return false
}

func partKey(itemID string, contentIndex int) string {
	return itemID + "#" + strconv.Itoa(contentIndex)
}

// itemScopeKey routes item-level events by item id and part-level
// events by (item id, content index).
func itemScopeKey(m events.ServerEvent) (string, bool) {
	switch m := m.(type) {
	case *events.ResponseOutputItemDoneEvent:
		return m.Item.ID, true
	case *events.ResponseContentPartAddedEvent:
		return m.ItemID, true
	case *events.ResponseFunctionCallArgumentsDeltaEvent:
		return m.ItemID, true
	case *events.ResponseFunctionCallArgumentsDoneEvent:
		return m.ItemID, true
	case *events.ResponseContentPartDoneEvent:
		return partKey(m.ItemID, m.ContentIndex), true
	case *events.ResponseTextDeltaEvent:
		return partKey(m.ItemID, m.ContentIndex), true
	case *events.ResponseTextDoneEvent:
		return partKey(m.ItemID, m.ContentIndex), true
	case *events.ResponseAudioDeltaEvent:
		return partKey(m.ItemID, m.ContentIndex), true
	case *events.ResponseAudioDoneEvent:
		return partKey(m.ItemID, m.ContentIndex), true
	case *events.ResponseAudioTranscriptDeltaEvent:
		return partKey(m.ItemID, m.ContentIndex), true
	case *events.ResponseAudioTranscriptDoneEvent:
		return partKey(m.ItemID, m.ContentIndex), true
	}
	return "", false
}

// Connect dials (unless a transport was injected) and waits for the
// server's session.created.
func (c *Client) Connect(ctx context.Context) error {
	if c.transport == nil {
		t, err := dial(ctx, c.config)
		if err != nil {
			return err
		}
		c.transport = t
		c.initQueues()
	}

	m, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		_, ok := m.(*events.SessionCreatedEvent)
		return ok
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	created := m.(*events.SessionCreatedEvent)
	c.mu.Lock()
	c.session = &created.Session
	c.mu.Unlock()
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.transport.Close(ctx)
}

// Session returns the last negotiated session snapshot.
func (c *Client) Session() *events.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// RateLimits returns the most recent rate_limits.updated snapshot.
func (c *Client) RateLimits() []events.RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimits
}

// RequestID returns the connection request id when the transport is a
// LowLevelClient, otherwise the zero value.
func (c *Client) RequestID() string {
	if t, ok := c.transport.(*LowLevelClient); ok {
		return t.RequestID().String()
	}
	return ""
}

// waitFor is the shared request/acknowledgement wait: first message
// matching pred, with a latched server error surfaced as *ServerError.
func (c *Client) waitFor(ctx context.Context, pred msgq.Predicate[events.ServerEvent]) (events.ServerEvent, error) {
	m, err := c.gate.Receive(ctx, pred)
	if err != nil {
		return nil, err
	}
	if se, ok := asServerError(m); ok {
		return nil, se
	}
	return m, nil
}

// Configure sends session.update and waits for the server's
// confirmed session. Deployments flagged with WithAzureNoConfigAck
// never acknowledge; for those the snapshot is folded locally from
// the request.
func (c *Client) Configure(ctx context.Context, update events.SessionUpdate) (*events.Session, error) {
	if err := c.transport.Send(ctx, events.NewSessionUpdateEvent(update)); err != nil {
		return nil, fmt.Errorf("configure: %w", err)
	}

	if c.config.azureNoConfigAck {
		c.mu.Lock()
		var base events.Session
		if c.session != nil {
			base = *c.session
		}
		s := update.ApplyTo(base)
		c.session = &s
		c.mu.Unlock()
		return &s, nil
	}

	m, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		_, ok := m.(*events.SessionUpdatedEvent)
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("configure: %w", err)
	}
	updated := m.(*events.SessionUpdatedEvent)
	c.mu.Lock()
	c.session = &updated.Session
	c.mu.Unlock()
	return &updated.Session, nil
}

// sessionUpdateFromConfig builds the initial update out of the
// configured options.
func (c *Client) sessionUpdateFromConfig() events.SessionUpdate {
	temperature := c.config.temperature
	update := events.SessionUpdate{
		Voice:                   c.config.voice,
		Temperature:             &temperature,
		Tools:                   c.config.tools,
		InputAudioTranscription: c.config.transcription,
		TurnDetection:           c.config.turnDetection,
	}
	if c.config.instructions != "" {
		instructions := c.config.instructions
		update.Instructions = &instructions
	}
	return update
}

// ConfigureFromOptions applies the options given at construction
// time as a session.update.
func (c *Client) ConfigureFromOptions(ctx context.Context) (*events.Session, error) {
	return c.Configure(ctx, c.sessionUpdateFromConfig())
}

// SendAudio appends raw PCM to the input audio buffer. The server
// does not acknowledge appends.
func (c *Client) SendAudio(ctx context.Context, audio []byte) error {
	encoded := base64.StdEncoding.EncodeToString(audio)
	if err := c.transport.Send(ctx, events.NewInputAudioBufferAppendEvent(encoded)); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	return nil
}

// CommitAudio commits the input audio buffer into a conversation item
// and returns its in-flight handle.
func (c *Client) CommitAudio(ctx context.Context) (*InputAudioItem, error) {
	if err := c.transport.Send(ctx, events.NewInputAudioBufferCommitEvent()); err != nil {
		return nil, fmt.Errorf("commit audio: %w", err)
	}
	m, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		_, ok := m.(*events.InputAudioBufferCommittedEvent)
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("commit audio: %w", err)
	}
	committed := m.(*events.InputAudioBufferCommittedEvent)
	return c.newInputAudioItem(committed.ItemID, 0), nil
}

// ClearAudio discards any uncommitted input audio.
func (c *Client) ClearAudio(ctx context.Context) error {
	if err := c.transport.Send(ctx, events.NewInputAudioBufferClearEvent()); err != nil {
		return fmt.Errorf("clear audio: %w", err)
	}
	_, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		_, ok := m.(*events.InputAudioBufferClearedEvent)
		return ok
	})
	if err != nil {
		return fmt.Errorf("clear audio: %w", err)
	}
	return nil
}

// SendItem creates a conversation item and waits for its creation
// acknowledgement. An empty item id is filled in locally.
func (c *Client) SendItem(ctx context.Context, item events.Item, previousItemID string) (events.Item, error) {
	if item.ID == "" {
		item.ID = events.NewItemID()
	}
	if err := c.transport.Send(ctx, events.NewConversationItemCreateEvent(previousItemID, item)); err != nil {
		return events.Item{}, fmt.Errorf("send item: %w", err)
	}
	m, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		created, ok := m.(*events.ConversationItemCreatedEvent)
		return ok && created.Item.ID == item.ID
	})
	if err != nil {
		return events.Item{}, fmt.Errorf("send item: %w", err)
	}
	return m.(*events.ConversationItemCreatedEvent).Item, nil
}

// RemoveItem deletes a conversation item.
func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	if err := c.transport.Send(ctx, events.NewConversationItemDeleteEvent(itemID)); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	_, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		deleted, ok := m.(*events.ConversationItemDeletedEvent)
		return ok && deleted.ItemID == itemID
	})
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

// TruncateItem drops already-sent assistant audio after audioEndMs,
// so the conversation state matches what the user actually heard.
func (c *Client) TruncateItem(ctx context.Context, itemID string, contentIndex, audioEndMs int) error {
	if err := c.transport.Send(ctx, events.NewConversationItemTruncateEvent(itemID, contentIndex, audioEndMs)); err != nil {
		return fmt.Errorf("truncate item: %w", err)
	}
	_, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		truncated, ok := m.(*events.ConversationItemTruncatedEvent)
		return ok && truncated.ItemID == itemID
	})
	if err != nil {
		return fmt.Errorf("truncate item: %w", err)
	}
	return nil
}

// GenerateResponse asks the model for a response and returns its
// in-flight handle once creation is acknowledged.
func (c *Client) GenerateResponse(ctx context.Context, params *events.ResponseCreateParams) (*Response, error) {
	if err := c.transport.Send(ctx, events.NewResponseCreateEvent(params)); err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}
	m, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		_, ok := m.(*events.ResponseCreatedEvent)
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}
	return c.newResponse(m.(*events.ResponseCreatedEvent).Response), nil
}

func (c *Client) hasTranscription() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.InputAudioTranscription != nil
}

// ServerTurn is a server-initiated unit of conversation: either a
// detected stretch of user speech or a model response.
type ServerTurn interface {
	serverTurn()
}

// TurnStream yields server-initiated turns in arrival order.
type TurnStream struct {
	client *Client
}

// Events returns the stream of server-initiated turns. Only one
// TurnStream should be consumed per client.
func (c *Client) Events() *TurnStream {
	return &TurnStream{client: c}
}

// Recv blocks for the next server-initiated turn. It returns io.EOF
// once the connection ends.
func (s *TurnStream) Recv(ctx context.Context) (ServerTurn, error) {
	c := s.client
	m, err := c.waitFor(ctx, func(m events.ServerEvent) bool {
		switch m.(type) {
		case *events.InputAudioBufferSpeechStartedEvent, *events.ResponseCreatedEvent:
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	switch m := m.(type) {
	case *events.InputAudioBufferSpeechStartedEvent:
		return c.newInputAudioItem(m.ItemID, m.AudioStartMs), nil
	case *events.ResponseCreatedEvent:
		return c.newResponse(m.Response), nil
	}
	return nil, fmt.Errorf("unexpected turn event %s", m.EventType())
}
