package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Well-known server event types. Services emit many more; unrecognized
// types pass through with Raw intact.
const (
	EventSessionCreated     = "session.created"
	EventAudioDelta         = "response.audio.delta"
	EventAudioDone          = "response.audio.done"
	EventTranscriptDelta    = "response.audio_transcript.delta"
	EventResponseDone       = "response.done"
	EventSpeechStarted      = "input_audio_buffer.speech_started"
	EventSpeechStopped      = "input_audio_buffer.speech_stopped"
	EventInputCommitted     = "input_audio_buffer.committed"
	EventConversationCreate = "conversation.item.created"
)

// ServerEvent is one decoded server frame.
type ServerEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"`

	// Audio payload candidates. Providers disagree on the field name;
	// ParseEvent probes them in order and fills Audio.
	Delta string `json:"delta,omitempty"`
	Chunk string `json:"chunk,omitempty"`
	B64   string `json:"audio,omitempty"`

	Transcript string `json:"transcript,omitempty"`
	Text       string `json:"text,omitempty"`
	ItemID     string `json:"item_id,omitempty"`

	Error *EventError `json:"error,omitempty"`

	// Audio is the decoded audio payload for delta events, nil otherwise.
	Audio []byte `json:"-"`
	// Raw is the original frame.
	Raw json.RawMessage `json:"-"`
}

// EventError is the error body of a type:"error" frame.
type EventError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Err converts an error event into a Go error.
func (e *ServerEvent) Err() error {
	if e.Error == nil {
		return fmt.Errorf("realtime: server error event %q", e.EventID)
	}
	return fmt.Errorf("realtime: server error: %s (%s)", e.Error.Message, e.Error.Code)
}

// ParseEvent decodes one server frame. Audio-bearing events get their
// base64 payload decoded into Audio; an undecodable payload is an error
// because a half-decoded frame would corrupt the audio stream.
func ParseEvent(message []byte) (*ServerEvent, error) {
	var ev ServerEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		return nil, fmt.Errorf("realtime: parse event: %w", err)
	}
	ev.Raw = message

	if b64 := ev.audioField(); b64 != "" {
		audio, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("realtime: decode audio payload: %w", err)
		}
		ev.Audio = audio
	}
	return &ev, nil
}

// audioField returns the base64 audio payload for delta events, probing
// the field names seen in the wild.
func (e *ServerEvent) audioField() string {
	switch e.Type {
	case EventAudioDelta:
	default:
		return ""
	}
	for _, s := range []string{e.Delta, e.Chunk, e.B64} {
		if s != "" {
			return s
		}
	}
	return ""
}
