package events

import (
	"encoding/json"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// BaseEvent carries the fields shared by every wire event.
type BaseEvent struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
}

func (e BaseEvent) EventType() string { return e.Type }

func NewBaseEvent(eventType string) BaseEvent {
	id, err := nanoid.New()
	if err != nil {
		panic(err)
	}
	return BaseEvent{
		EventID: id,
		Type:    eventType,
	}
}

// NewItemID produces an id for a locally created conversation item.
func NewItemID() string {
	id, err := nanoid.New()
	if err != nil {
		panic(err)
	}
	return "item_" + id
}

// ServerEvent is the closed union of messages the server may send.
type ServerEvent interface {
	EventType() string
	serverEvent()
}

// ClientEvent is the closed union of requests the client may send.
type ClientEvent interface {
	EventType() string
	clientEvent()
}

// ErrorDetail holds the details of a server-reported error.
type ErrorDetail struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

func (e *ErrorDetail) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Marshal encodes a client event for the wire.
func Marshal(e ClientEvent) ([]byte, error) {
	return json.Marshal(e)
}

// ParseServer decodes a server event by its type discriminator. Events
// with an unregistered discriminator decode into *UnknownEvent.
func ParseServer(data []byte) (ServerEvent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse event header: %w", err)
	}

	ctor, ok := serverRegistry[head.Type]
	if !ok {
		u := &UnknownEvent{Raw: append([]byte(nil), data...)}
		if err := json.Unmarshal(data, &u.BaseEvent); err != nil {
			return nil, fmt.Errorf("parse unknown event %q: %w", head.Type, err)
		}
		return u, nil
	}

	e := ctor()
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("parse event %q: %w", head.Type, err)
	}
	return e, nil
}
