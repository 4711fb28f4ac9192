package realtime

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/wirevox/realtime-go/events"
)

// InputAudioItem tracks a stretch of committed (or VAD-detected) user
// audio. Wait resolves once the turn is complete: on speech stop when
// transcription is disabled, otherwise when transcription finishes.
type InputAudioItem struct {
	client           *Client
	id               string
	hasTranscription bool

	mu           sync.Mutex
	audioStartMs int
	audioEndMs   int
	transcript   string
}

func (c *Client) newInputAudioItem(id string, audioStartMs int) *InputAudioItem {
	return &InputAudioItem{
		client:           c,
		id:               id,
		hasTranscription: c.hasTranscription(),
		audioStartMs:     audioStartMs,
	}
}

func (*InputAudioItem) serverTurn() {}

func (i *InputAudioItem) ID() string { return i.id }

func (i *InputAudioItem) AudioStartMs() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.audioStartMs
}

func (i *InputAudioItem) AudioEndMs() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.audioEndMs
}

// Transcript is empty until transcription completes (and always when
// transcription is disabled).
func (i *InputAudioItem) Transcript() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.transcript
}

// Wait blocks until the item is resolved, updating the audio-end and
// transcript snapshots as intermediate events arrive. A transcription
// failure surfaces as *ServerError; end-of-stream resolves the item
// in its current state.
func (i *InputAudioItem) Wait(ctx context.Context) error {
	for {
		m, err := i.client.gate.Receive(ctx, i.relevant)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if se, ok := asServerError(m); ok {
			return se
		}

		switch m := m.(type) {
		case *events.InputAudioBufferSpeechStoppedEvent:
			i.mu.Lock()
			i.audioEndMs = m.AudioEndMs
			i.mu.Unlock()
			if !i.hasTranscription {
				return nil
			}
		case *events.ConversationItemCreatedEvent:
			if !i.hasTranscription {
				return nil
			}
		case *events.InputAudioTranscriptionDeltaEvent:
			i.mu.Lock()
			i.transcript += m.Delta
			i.mu.Unlock()
		case *events.InputAudioTranscriptionCompletedEvent:
			i.mu.Lock()
			i.transcript = m.Transcript
			i.mu.Unlock()
			return nil
		case *events.InputAudioTranscriptionFailedEvent:
			return serverError(m.Error)
		}
	}
}

func (i *InputAudioItem) relevant(m events.ServerEvent) bool {
	switch m := m.(type) {
	case *events.InputAudioBufferSpeechStoppedEvent:
		return m.ItemID == i.id
	case *events.ConversationItemCreatedEvent:
		return m.Item.ID == i.id
	case *events.InputAudioTranscriptionDeltaEvent:
		return m.ItemID == i.id
	case *events.InputAudioTranscriptionCompletedEvent:
		return m.ItemID == i.id
	case *events.InputAudioTranscriptionFailedEvent:
		return m.ItemID == i.id
	}
	return false
}
