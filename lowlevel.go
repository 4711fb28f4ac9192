package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/wirevox/realtime-go/events"
	"github.com/wirevox/realtime-go/internal/websocket"
)

// Transport sends encoded client events and yields decoded server
// events one at a time. Exactly one goroutine may call Recv.
type Transport interface {
	Send(ctx context.Context, e events.ClientEvent) error
	Recv(ctx context.Context) (events.ServerEvent, error)
	Close(ctx context.Context) error
	Closed() bool
}

// LowLevelClient is the wire-level connection to an OpenAI or Azure
// OpenAI realtime endpoint. It does no correlation; use Client for
// the stateful API.
type LowLevelClient struct {
	ws        *websocket.Client
	requestID uuid.UUID
	logger    *slog.Logger
}

var _ Transport = (*LowLevelClient)(nil)

// Dial connects and performs the websocket handshake. It does not
// wait for session.created.
func Dial(ctx context.Context, opts ...ClientOption) (*LowLevelClient, error) {
	config := &clientConfig{}
	withDefaults()(config)
	WithOptions(opts...)(config)
	return dial(ctx, config)
}

func dial(ctx context.Context, config *clientConfig) (*LowLevelClient, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	requestID := uuid.New()
	headers := http.Header{}
	var url string
	if config.isAzure() {
		apiVersion := config.azureAPIVersion
		if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
			apiVersion = v
		}
		path := config.azurePath
		if path == "" {
			path = defaultAzurePath
		}
		if p := os.Getenv("AZURE_OPENAI_PATH"); p != "" {
			path = p
		}
		url = fmt.Sprintf("%s%s?deployment=%s&api-version=%s", config.azureEndpoint, path, config.azureDeployment, apiVersion)
		headers.Add("api-key", config.apiKey)
		headers.Add("x-ms-client-request-id", requestID.String())
	} else {
		url = fmt.Sprintf("wss://api.openai.com/v1/realtime?model=%s", config.model)
		headers.Add("Authorization", fmt.Sprintf("Bearer %s", config.apiKey))
		headers.Add("OpenAI-Beta", "realtime=v1")
	}

	ws, err := websocket.Connect(ctx, websocket.ClientConfig{
		URL:     url,
		Headers: headers,
		Logger:  config.logger,
	})
	if err != nil {
		return nil, err
	}

	return &LowLevelClient{
		ws:        ws,
		requestID: requestID,
		logger:    config.logger,
	}, nil
}

// RequestID identifies this connection attempt for server-side
// correlation.
func (c *LowLevelClient) RequestID() uuid.UUID { return c.requestID }

func (c *LowLevelClient) Send(ctx context.Context, e events.ClientEvent) error {
	data, err := events.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.EventType(), err)
	}
	if err := c.ws.WriteText(data); err != nil {
		return fmt.Errorf("send %s: %w", e.EventType(), err)
	}
	return nil
}

func (c *LowLevelClient) Recv(ctx context.Context) (events.ServerEvent, error) {
	data, err := c.ws.Recv(ctx)
	if err != nil {
		return nil, err
	}
	return events.ParseServer(data)
}

func (c *LowLevelClient) Close(ctx context.Context) error {
	return c.ws.Close(ctx)
}

func (c *LowLevelClient) Closed() bool {
	return c.ws.Closed()
}
