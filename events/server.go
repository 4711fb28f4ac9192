package events

import "encoding/json"

type ErrorEvent struct {
	BaseEvent
	Error ErrorDetail `json:"error"`
}

type SessionCreatedEvent struct {
	BaseEvent
	Session Session `json:"session"`
}

type SessionUpdatedEvent struct {
	BaseEvent
	Session Session `json:"session"`
}

type InputAudioBufferCommittedEvent struct {
	BaseEvent
	PreviousItemID string `json:"previous_item_id,omitempty"`
	ItemID         string `json:"item_id"`
}

type InputAudioBufferClearedEvent struct {
	BaseEvent
}

type InputAudioBufferSpeechStartedEvent struct {
	BaseEvent
	AudioStartMs int    `json:"audio_start_ms"`
	ItemID       string `json:"item_id"`
}

type InputAudioBufferSpeechStoppedEvent struct {
	BaseEvent
	AudioEndMs int    `json:"audio_end_ms"`
	ItemID     string `json:"item_id"`
}

type ConversationItemCreatedEvent struct {
	BaseEvent
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

type ConversationItemTruncatedEvent struct {
	BaseEvent
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	AudioEndMs   int    `json:"audio_end_ms"`
}

type ConversationItemDeletedEvent struct {
	BaseEvent
	ItemID string `json:"item_id"`
}

type InputAudioTranscriptionDeltaEvent struct {
	BaseEvent
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

type InputAudioTranscriptionCompletedEvent struct {
	BaseEvent
	ItemID       string `json:"item_id"`
	ContentIndex int    `json:"content_index"`
	Transcript   string `json:"transcript"`
}

type InputAudioTranscriptionFailedEvent struct {
	BaseEvent
	ItemID       string      `json:"item_id"`
	ContentIndex int         `json:"content_index"`
	Error        ErrorDetail `json:"error"`
}

type ResponseCreatedEvent struct {
	BaseEvent
	Response Response `json:"response"`
}

type ResponseDoneEvent struct {
	BaseEvent
	Response Response `json:"response"`
}

type ResponseOutputItemAddedEvent struct {
	BaseEvent
	ResponseID  string `json:"response_id"`
	OutputIndex int    `json:"output_index"`
	Item        Item   `json:"item"`
}

type ResponseOutputItemDoneEvent struct {
	BaseEvent
	ResponseID  string `json:"response_id"`
	OutputIndex int    `json:"output_index"`
	Item        Item   `json:"item"`
}

type ResponseContentPartAddedEvent struct {
	BaseEvent
	ResponseID   string      `json:"response_id"`
	ItemID       string      `json:"item_id"`
	OutputIndex  int         `json:"output_index"`
	ContentIndex int         `json:"content_index"`
	Part         ContentPart `json:"part"`
}

type ResponseContentPartDoneEvent struct {
	BaseEvent
	ResponseID   string      `json:"response_id"`
	ItemID       string      `json:"item_id"`
	OutputIndex  int         `json:"output_index"`
	ContentIndex int         `json:"content_index"`
	Part         ContentPart `json:"part"`
}

type ResponseTextDeltaEvent struct {
	BaseEvent
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

type ResponseTextDoneEvent struct {
	BaseEvent
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Text         string `json:"text"`
}

type ResponseAudioDeltaEvent struct {
	BaseEvent
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

type ResponseAudioDoneEvent struct {
	BaseEvent
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
}

type ResponseAudioTranscriptDeltaEvent struct {
	BaseEvent
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

type ResponseAudioTranscriptDoneEvent struct {
	BaseEvent
	ResponseID   string `json:"response_id"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Transcript   string `json:"transcript"`
}

type ResponseFunctionCallArgumentsDeltaEvent struct {
	BaseEvent
	ResponseID  string `json:"response_id"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	CallID      string `json:"call_id"`
	Delta       string `json:"delta"`
}

type ResponseFunctionCallArgumentsDoneEvent struct {
	BaseEvent
	ResponseID  string `json:"response_id"`
	ItemID      string `json:"item_id"`
	OutputIndex int    `json:"output_index"`
	CallID      string `json:"call_id"`
	Arguments   string `json:"arguments"`
}

type RateLimitsUpdatedEvent struct {
	BaseEvent
	RateLimits []RateLimit `json:"rate_limits"`
}

// UnknownEvent preserves a server event whose discriminator is not in
// the registry.
type UnknownEvent struct {
	BaseEvent
	Raw json.RawMessage `json:"-"`
}

var serverRegistry = map[string]func() ServerEvent{
	"error":               func() ServerEvent { return &ErrorEvent{} },
	"session.created":     func() ServerEvent { return &SessionCreatedEvent{} },
	"session.updated":     func() ServerEvent { return &SessionUpdatedEvent{} },
	"rate_limits.updated": func() ServerEvent { return &RateLimitsUpdatedEvent{} },

	"input_audio_buffer.committed":      func() ServerEvent { return &InputAudioBufferCommittedEvent{} },
	"input_audio_buffer.cleared":        func() ServerEvent { return &InputAudioBufferClearedEvent{} },
	"input_audio_buffer.speech_started": func() ServerEvent { return &InputAudioBufferSpeechStartedEvent{} },
	"input_audio_buffer.speech_stopped": func() ServerEvent { return &InputAudioBufferSpeechStoppedEvent{} },

	"conversation.item.created":   func() ServerEvent { return &ConversationItemCreatedEvent{} },
	"conversation.item.truncated": func() ServerEvent { return &ConversationItemTruncatedEvent{} },
	"conversation.item.deleted":   func() ServerEvent { return &ConversationItemDeletedEvent{} },

	"conversation.item.input_audio_transcription.delta":     func() ServerEvent { return &InputAudioTranscriptionDeltaEvent{} },
	"conversation.item.input_audio_transcription.completed": func() ServerEvent { return &InputAudioTranscriptionCompletedEvent{} },
	"conversation.item.input_audio_transcription.failed":    func() ServerEvent { return &InputAudioTranscriptionFailedEvent{} },

	"response.created":                       func() ServerEvent { return &ResponseCreatedEvent{} },
	"response.done":                          func() ServerEvent { return &ResponseDoneEvent{} },
	"response.output_item.added":             func() ServerEvent { return &ResponseOutputItemAddedEvent{} },
	"response.output_item.done":              func() ServerEvent { return &ResponseOutputItemDoneEvent{} },
	"response.content_part.added":            func() ServerEvent { return &ResponseContentPartAddedEvent{} },
	"response.content_part.done":             func() ServerEvent { return &ResponseContentPartDoneEvent{} },
	"response.text.delta":                    func() ServerEvent { return &ResponseTextDeltaEvent{} },
	"response.text.done":                     func() ServerEvent { return &ResponseTextDoneEvent{} },
	"response.audio.delta":                   func() ServerEvent { return &ResponseAudioDeltaEvent{} },
	"response.audio.done":                    func() ServerEvent { return &ResponseAudioDoneEvent{} },
	"response.audio_transcript.delta":        func() ServerEvent { return &ResponseAudioTranscriptDeltaEvent{} },
	"response.audio_transcript.done":         func() ServerEvent { return &ResponseAudioTranscriptDoneEvent{} },
	"response.function_call_arguments.delta": func() ServerEvent { return &ResponseFunctionCallArgumentsDeltaEvent{} },
	"response.function_call_arguments.done":  func() ServerEvent { return &ResponseFunctionCallArgumentsDoneEvent{} },
}

func (*ErrorEvent) serverEvent()                              {}
func (*SessionCreatedEvent) serverEvent()                     {}
func (*SessionUpdatedEvent) serverEvent()                     {}
func (*InputAudioBufferCommittedEvent) serverEvent()          {}
func (*InputAudioBufferClearedEvent) serverEvent()            {}
func (*InputAudioBufferSpeechStartedEvent) serverEvent()      {}
func (*InputAudioBufferSpeechStoppedEvent) serverEvent()      {}
func (*ConversationItemCreatedEvent) serverEvent()            {}
func (*ConversationItemTruncatedEvent) serverEvent()          {}
func (*ConversationItemDeletedEvent) serverEvent()            {}
func (*InputAudioTranscriptionDeltaEvent) serverEvent()       {}
func (*InputAudioTranscriptionCompletedEvent) serverEvent()   {}
func (*InputAudioTranscriptionFailedEvent) serverEvent()      {}
func (*ResponseCreatedEvent) serverEvent()                    {}
func (*ResponseDoneEvent) serverEvent()                       {}
func (*ResponseOutputItemAddedEvent) serverEvent()            {}
func (*ResponseOutputItemDoneEvent) serverEvent()             {}
func (*ResponseContentPartAddedEvent) serverEvent()           {}
func (*ResponseContentPartDoneEvent) serverEvent()            {}
func (*ResponseTextDeltaEvent) serverEvent()                  {}
func (*ResponseTextDoneEvent) serverEvent()                   {}
func (*ResponseAudioDeltaEvent) serverEvent()                 {}
func (*ResponseAudioDoneEvent) serverEvent()                  {}
func (*ResponseAudioTranscriptDeltaEvent) serverEvent()       {}
func (*ResponseAudioTranscriptDoneEvent) serverEvent()        {}
func (*ResponseFunctionCallArgumentsDeltaEvent) serverEvent() {}
func (*ResponseFunctionCallArgumentsDoneEvent) serverEvent()  {}
func (*RateLimitsUpdatedEvent) serverEvent()                  {}
func (*UnknownEvent) serverEvent()                            {}
