package events

type SessionUpdateEvent struct {
	BaseEvent
	Session SessionUpdate `json:"session"`
}

func NewSessionUpdateEvent(s SessionUpdate) *SessionUpdateEvent {
	return &SessionUpdateEvent{BaseEvent: NewBaseEvent("session.update"), Session: s}
}

type InputAudioBufferAppendEvent struct {
	BaseEvent
	Audio string `json:"audio"`
}

func NewInputAudioBufferAppendEvent(audio string) *InputAudioBufferAppendEvent {
	return &InputAudioBufferAppendEvent{BaseEvent: NewBaseEvent("input_audio_buffer.append"), Audio: audio}
}

type InputAudioBufferCommitEvent struct {
	BaseEvent
}

func NewInputAudioBufferCommitEvent() *InputAudioBufferCommitEvent {
	return &InputAudioBufferCommitEvent{BaseEvent: NewBaseEvent("input_audio_buffer.commit")}
}

type InputAudioBufferClearEvent struct {
	BaseEvent
}

func NewInputAudioBufferClearEvent() *InputAudioBufferClearEvent {
	return &InputAudioBufferClearEvent{BaseEvent: NewBaseEvent("input_audio_buffer.clear")}
}

type ConversationItemCreateEvent struct {
	BaseEvent
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

func NewConversationItemCreateEvent(previousItemID string, item Item) *ConversationItemCreateEvent {
	return &ConversationItemCreateEvent{
		BaseEvent:      NewBaseEvent("conversation.item.create"),
		PreviousItemID: previousItemID,
		Item:           item,
	}
}

type ConversationItemTruncateEvent struct {
	BaseEvent
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	AudioEndMs   int    `json:"audio_end_ms"`
}

func NewConversationItemTruncateEvent(itemID string, contentIndex, audioEndMs int) *ConversationItemTruncateEvent {
	return &ConversationItemTruncateEvent{
		BaseEvent:    NewBaseEvent("conversation.item.truncate"),
		ItemID:       itemID,
		ContentIndex: contentIndex,
		AudioEndMs:   audioEndMs,
	}
}

type ConversationItemDeleteEvent struct {
	BaseEvent
	ItemID string `json:"item_id"`
}

func NewConversationItemDeleteEvent(itemID string) *ConversationItemDeleteEvent {
	return &ConversationItemDeleteEvent{BaseEvent: NewBaseEvent("conversation.item.delete"), ItemID: itemID}
}

type ResponseCreateEvent struct {
	BaseEvent
	Response *ResponseCreateParams `json:"response,omitempty"`
}

func NewResponseCreateEvent(p *ResponseCreateParams) *ResponseCreateEvent {
	return &ResponseCreateEvent{BaseEvent: NewBaseEvent("response.create"), Response: p}
}

type ResponseCancelEvent struct {
	BaseEvent
	ResponseID string `json:"response_id,omitempty"`
}

func NewResponseCancelEvent(responseID string) *ResponseCancelEvent {
	return &ResponseCancelEvent{BaseEvent: NewBaseEvent("response.cancel"), ResponseID: responseID}
}

func (*SessionUpdateEvent) clientEvent()            {}
func (*InputAudioBufferAppendEvent) clientEvent()   {}
func (*InputAudioBufferCommitEvent) clientEvent()   {}
func (*InputAudioBufferClearEvent) clientEvent()    {}
func (*ConversationItemCreateEvent) clientEvent()   {}
func (*ConversationItemTruncateEvent) clientEvent() {}
func (*ConversationItemDeleteEvent) clientEvent()   {}
func (*ResponseCreateEvent) clientEvent()           {}
func (*ResponseCancelEvent) clientEvent()           {}
