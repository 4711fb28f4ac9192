package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

type ClientConfig struct {
	URL         string
	DialTimeout time.Duration
	Headers     http.Header
	Logger      *slog.Logger
}

// Client is a websocket connection with a single-reader receive API:
// frames are drained by one pump goroutine and handed out through
// Recv in arrival order.
type Client struct {
	in       chan []byte
	out      chan wsutil.Message
	done     chan struct{}
	doneOnce sync.Once
	readErr  error
	logger   *slog.Logger
}

func (c *Client) setDone(err error) {
	c.doneOnce.Do(func() {
		c.readErr = err
		close(c.done)
	})
}

// ErrClosed is returned by writes after the connection has ended.
var ErrClosed = errors.New("websocket: connection closed")

func (c *Client) WriteText(data []byte) error {
	return c.Write(ws.OpText, data)
}

func (c *Client) Ping(data []byte) error {
	return c.Write(ws.OpPing, data)
}

func (c *Client) SendClose(code ws.StatusCode, reason string) error {
	return c.Write(ws.OpClose, ws.NewCloseFrameBody(code, reason))
}

func (c *Client) Write(opcode ws.OpCode, data []byte) error {
	if c.Closed() {
		return c.closeErr()
	}
	select {
	case c.out <- wsutil.Message{OpCode: opcode, Payload: data}:
		return nil
	case <-c.done:
		return c.closeErr()
	}
}

func (c *Client) closeErr() error {
	if c.readErr != nil {
		return c.readErr
	}
	return ErrClosed
}

// Recv returns the next text frame. It returns io.EOF once the peer
// closes the connection and the read error on transport failure.
// Recv must not be called concurrently with itself.
func (c *Client) Recv(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-c.in:
		if !ok {
			if c.readErr != nil {
				return nil, c.readErr
			}
			return nil, io.EOF
		}
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Closed reports whether the connection has ended.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) Close(ctx context.Context) error {
	_ = c.SendClose(ws.StatusNormalClosure, "closing")
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("close failed: %w", ctx.Err())
	}
}

func Connect(ctx context.Context, config ClientConfig) (*Client, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("url", config.URL),
	)

	dialTimeout := config.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 10 * time.Second
	}

	hsCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	d := ws.Dialer{
		Timeout: dialTimeout,
		Header:  ws.HandshakeHeaderHTTP(config.Headers),
	}
	conn, buf, hs, err := d.Dial(hsCtx, config.URL)
	if err != nil {
		return nil, err
	}
	logger.Debug("handshake complete", slog.Any("handshake", hs))

	// Make sure to recycle the buffer if non-nil:
	if buf != nil {
		defer ws.PutReader(buf)
	}

	logger.Info("connected to websocket")

	client := &Client{
		in:     make(chan []byte, 1000),
		out:    make(chan wsutil.Message, 1000),
		done:   make(chan struct{}),
		logger: logger,
	}

	// websocket -> in channel
	go func() {
		defer close(client.in)
		for {
			messages, err := wsutil.ReadServerMessage(conn, nil)
			if err != nil {
				if errors.Is(err, io.EOF) || client.Closed() {
					client.setDone(nil)
					return
				}
				logger.Error("ws read failed", slog.Any("err", err))
				client.setDone(err)
				return
			}
			for _, msg := range messages {
				if ws.OpCode.IsControl(msg.OpCode) {
					logger.Debug("rcv: control", slog.Any("opcode", msg.OpCode))
					if err := wsutil.HandleServerControlMessage(conn, msg); err != nil {
						logger.Error("handling of control messages failed", slog.Any("err", err))
					}
					if msg.OpCode == ws.OpClose {
						logger.Debug("rcv: close", slog.String("reason", string(msg.Payload)))
						client.setDone(nil)
						return
					}
					continue
				}
				if msg.OpCode == ws.OpText {
					select {
					case client.in <- msg.Payload:
					case <-ctx.Done():
						client.setDone(ctx.Err())
						return
					}
				}
			}
		}
	}()

	// out channel -> websocket
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-client.done:
				return
			case msg := <-client.out:
				if err := wsutil.WriteClientMessage(conn, msg.OpCode, msg.Payload); err != nil {
					logger.Error("message write error", slog.Any("err", err))
					client.setDone(err)
					return
				}
			}
		}
	}()

	return client, nil
}
