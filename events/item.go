package events

type ItemType string

const (
	ItemTypeMessage            ItemType = "message"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"
)

type ItemStatus string

const (
	ItemStatusInProgress ItemStatus = "in_progress"
	ItemStatusCompleted  ItemStatus = "completed"
	ItemStatusIncomplete ItemStatus = "incomplete"
)

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Item is the wire shape of a conversation item. Which fields are set
// depends on Type: messages carry Role and Content, function calls
// carry Name/CallID/Arguments, function call outputs carry CallID and
// Output.
type Item struct {
	ID        string        `json:"id,omitempty"`
	Object    string        `json:"object,omitempty"`
	Type      ItemType      `json:"type"`
	Status    ItemStatus    `json:"status,omitempty"`
	Role      MessageRole   `json:"role,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
}

type ContentType string

const (
	ContentTypeInputText  ContentType = "input_text"
	ContentTypeInputAudio ContentType = "input_audio"
	ContentTypeText       ContentType = "text"
	ContentTypeAudio      ContentType = "audio"
)

// ContentPart is one ordered part of a message item's content. Audio
// is base64-encoded PCM.
type ContentPart struct {
	Type       ContentType `json:"type"`
	Text       string      `json:"text,omitempty"`
	Audio      string      `json:"audio,omitempty"`
	Transcript string      `json:"transcript,omitempty"`
}

type ResponseStatus string

const (
	ResponseStatusInProgress ResponseStatus = "in_progress"
	ResponseStatusCompleted  ResponseStatus = "completed"
	ResponseStatusCancelled  ResponseStatus = "cancelled"
	ResponseStatusIncomplete ResponseStatus = "incomplete"
	ResponseStatusFailed     ResponseStatus = "failed"
)

// Terminal reports whether the status is final.
func (s ResponseStatus) Terminal() bool {
	switch s {
	case ResponseStatusCompleted, ResponseStatusCancelled, ResponseStatusIncomplete, ResponseStatusFailed:
		return true
	}
	return false
}

type ResponseStatusDetails struct {
	Type   string       `json:"type,omitempty"`
	Reason string       `json:"reason,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

type Usage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the wire shape of a model response.
type Response struct {
	ID            string                 `json:"id"`
	Object        string                 `json:"object,omitempty"`
	Status        ResponseStatus         `json:"status,omitempty"`
	StatusDetails *ResponseStatusDetails `json:"status_details,omitempty"`
	Output        []Item                 `json:"output,omitempty"`
	Usage         *Usage                 `json:"usage,omitempty"`
}

// ResponseCreateParams overrides session defaults for one response.
type ResponseCreateParams struct {
	Modalities        []Modality  `json:"modalities,omitempty"`
	Instructions      string      `json:"instructions,omitempty"`
	Voice             string      `json:"voice,omitempty"`
	OutputAudioFormat AudioFormat `json:"output_audio_format,omitempty"`
	Temperature       float64     `json:"temperature,omitempty"`
	MaxOutputTokens   int         `json:"max_output_tokens,omitempty"`
}

// RateLimit is one bucket from a rate_limits.updated event.
type RateLimit struct {
	Name         string  `json:"name"`
	Limit        int     `json:"limit"`
	Remaining    int     `json:"remaining"`
	ResetSeconds float64 `json:"reset_seconds"`
}
