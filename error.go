package realtime

import (
	"errors"
	"fmt"

	"github.com/wirevox/realtime-go/events"
)

// ServerError is a protocol error reported by the server. Once one is
// received, every pending and future wait on the session resolves
// with the same error.
type ServerError struct {
	Type    string
	Code    string
	Message string
	Param   string
	EventID string
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server error: %s", e.Message)
}

func serverError(d events.ErrorDetail) *ServerError {
	return &ServerError{
		Type:    d.Type,
		Code:    d.Code,
		Message: d.Message,
		Param:   d.Param,
		EventID: d.EventID,
	}
}

// asServerError converts a latched error event, if m is one.
func asServerError(m events.ServerEvent) (*ServerError, bool) {
	if e, ok := m.(*events.ErrorEvent); ok {
		return serverError(e.Error), true
	}
	return nil, false
}

// Usage errors of the one-shot function call contract. They are local
// misuse, raised without touching the connection.
var (
	ErrArgumentsStreamed = errors.New("realtime: function call arguments already consumed as a stream")
	ErrArgumentsAwaited  = errors.New("realtime: function call arguments already awaited")
)
