package realtime

import (
	"encoding/base64"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Session is one live realtime connection.
type Session struct {
	conn      *websocket.Conn
	logger    *slog.Logger
	closeCh   chan struct{}
	eventsCh  chan eventOrError
	closeOnce sync.Once
	mu        sync.Mutex // guards writes to conn
}

type eventOrError struct {
	event *ServerEvent
	err   error
}

// UpdateSession sends a session.update with the given configuration.
func (s *Session) UpdateSession(cfg *SessionConfig) error {
	return s.send(map[string]any{
		"event_id": newEventID(),
		"type":     "session.update",
		"session":  cfg,
	})
}

// AppendAudio appends raw audio bytes to the input buffer. The service
// expects base64 inside the JSON frame; encoding happens here.
func (s *Session) AppendAudio(audio []byte) error {
	return s.send(map[string]any{
		"event_id": newEventID(),
		"type":     "input_audio_buffer.append",
		"audio":    base64.StdEncoding.EncodeToString(audio),
	})
}

// CommitInput marks the buffered input audio as one completed turn.
func (s *Session) CommitInput() error {
	return s.send(map[string]any{
		"event_id": newEventID(),
		"type":     "input_audio_buffer.commit",
	})
}

// SendText injects a user text message into the conversation.
func (s *Session) SendText(text string) error {
	return s.send(map[string]any{
		"event_id": newEventID(),
		"type":     "conversation.item.create",
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	})
}

// CreateResponse asks the model to produce a response. Instructions may
// be empty.
func (s *Session) CreateResponse(instructions string) error {
	ev := map[string]any{
		"event_id": newEventID(),
		"type":     "response.create",
	}
	if instructions != "" {
		ev["response"] = map[string]any{"instructions": instructions}
	}
	return s.send(ev)
}

// CancelResponse interrupts the in-flight response.
func (s *Session) CancelResponse() error {
	return s.send(map[string]any{
		"event_id": newEventID(),
		"type":     "response.cancel",
	})
}

// Events iterates server events until the session closes or a read error
// ends the stream. The iterator yields the error as its final element.
func (s *Session) Events() iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
				}
				if !yield(item.event, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.conn.Close()
	})
	return err
}

func (s *Session) send(event map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("realtime: send %v: %w", event["type"], err)
	}
	return nil
}

func (s *Session) readLoop() {
	defer close(s.eventsCh)

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
			case s.eventsCh <- eventOrError{err: fmt.Errorf("realtime: read: %w", err)}:
			}
			return
		}

		event, err := ParseEvent(message)
		if err != nil {
			// Non-JSON frames are dropped, not fatal: some services
			// interleave keepalives the protocol does not document.
			s.logger.Warn("dropping unparseable frame", "len", len(message), "error", err)
			continue
		}
		if event.Type == "error" {
			select {
			case <-s.closeCh:
				return
			case s.eventsCh <- eventOrError{err: event.Err()}:
			}
			continue
		}

		select {
		case <-s.closeCh:
			return
		case s.eventsCh <- eventOrError{event: event}:
		}
	}
}
