package events

import "github.com/wirevox/realtime-go/tool"

type AudioFormat string

const (
	AudioFormatPCM16    AudioFormat = "pcm16"
	AudioFormatG711ULaw AudioFormat = "g711_ulaw"
	AudioFormatG711ALaw AudioFormat = "g711_alaw"
)

type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// Session is the server's view of the negotiated configuration.
type Session struct {
	ID                      string                   `json:"id,omitempty"`
	Object                  string                   `json:"object,omitempty"`
	Model                   string                   `json:"model,omitempty"`
	ExpiresAt               int64                    `json:"expires_at,omitempty"`
	Modalities              []Modality               `json:"modalities,omitempty"`
	Instructions            string                   `json:"instructions,omitempty"`
	Voice                   string                   `json:"voice,omitempty"`
	InputAudioFormat        AudioFormat              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       AudioFormat              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
	Tools                   []tool.Tool              `json:"tools,omitempty"`
	ToolChoice              tool.Choice              `json:"tool_choice,omitempty"`
	Temperature             float64                  `json:"temperature,omitempty"`
	MaxResponseOutputTokens MaxTokens                `json:"max_response_output_tokens,omitempty"`
}

// SessionUpdate carries the fields of a session.update request. Only
// set fields are sent; the server keeps the rest unchanged.
// Instructions and Temperature are pointers because their zero values
// are meaningful requests (clear the instructions, temperature 0).
type SessionUpdate struct {
	Model                   string                   `json:"model,omitempty"`
	Modalities              []Modality               `json:"modalities,omitempty"`
	Instructions            *string                  `json:"instructions,omitempty"`
	Voice                   string                   `json:"voice,omitempty"`
	InputAudioFormat        AudioFormat              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       AudioFormat              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
	Tools                   []tool.Tool              `json:"tools,omitempty"`
	ToolChoice              tool.Choice              `json:"tool_choice,omitempty"`
	Temperature             *float64                 `json:"temperature,omitempty"`
	MaxResponseOutputTokens MaxTokens                `json:"max_response_output_tokens,omitempty"`
}

// ApplyTo folds an update into a session snapshot. Used when a
// deployment never acknowledges session.update.
func (u SessionUpdate) ApplyTo(s Session) Session {
	if u.Model != "" {
		s.Model = u.Model
	}
	if u.Modalities != nil {
		s.Modalities = u.Modalities
	}
	if u.Instructions != nil {
		s.Instructions = *u.Instructions
	}
	if u.Voice != "" {
		s.Voice = u.Voice
	}
	if u.InputAudioFormat != "" {
		s.InputAudioFormat = u.InputAudioFormat
	}
	if u.OutputAudioFormat != "" {
		s.OutputAudioFormat = u.OutputAudioFormat
	}
	if u.InputAudioTranscription != nil {
		s.InputAudioTranscription = u.InputAudioTranscription
	}
	if u.TurnDetection != nil {
		s.TurnDetection = u.TurnDetection
	}
	if u.Tools != nil {
		s.Tools = u.Tools
	}
	if u.ToolChoice != "" {
		s.ToolChoice = u.ToolChoice
	}
	if u.Temperature != nil {
		s.Temperature = *u.Temperature
	}
	if u.MaxResponseOutputTokens != "" {
		s.MaxResponseOutputTokens = u.MaxResponseOutputTokens
	}
	return s
}

// MaxTokens is either a decimal count or the literal "inf". It is a
// bare number on the wire unless it is "inf".
type MaxTokens string

const MaxTokensInf MaxTokens = "inf"

func (t MaxTokens) MarshalJSON() ([]byte, error) {
	if t == MaxTokensInf {
		return []byte(`"inf"`), nil
	}
	return []byte(t), nil
}

func (t *MaxTokens) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	*t = MaxTokens(s)
	return nil
}

// InputAudioTranscription enables transcription of committed input
// audio.
type InputAudioTranscription struct {
	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
}

// TurnDetection holds the VAD configuration.
type TurnDetection struct {
	Type              string  `json:"type,omitempty"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
	CreateResponse    bool    `json:"create_response,omitempty"`
	InterruptResponse bool    `json:"interrupt_response,omitempty"`
}
