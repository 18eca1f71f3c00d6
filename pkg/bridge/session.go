package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haivivi/voicebridge/pkg/realtime"
)

// AIStream is the realtime side of a bridge. *realtime.Session
// implements it; tests substitute fakes.
type AIStream interface {
	AppendAudio(audio []byte) error
	CommitInput() error
	SendText(text string) error
	CreateResponse(instructions string) error
	Events() iter.Seq2[*realtime.ServerEvent, error]
	Close() error
}

var _ AIStream = (*realtime.Session)(nil)

// MediaConn is the telephony side. *websocket.Conn implements it.
type MediaConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// controlFrame is a JSON text frame from the telephony side.
type controlFrame struct {
	Type string `json:"type"` // "say" or "commit"
	Text string `json:"text,omitempty"`
}

// SessionConfig fixes the formats and tuning knobs for one call.
type SessionConfig struct {
	CallID string
	Caller Format // frames arriving from the telephony leg
	AI     Format // frames to and from the realtime service

	// CallerOut is the format of frames sent back to the telephony
	// leg. Zero means same as Caller.
	CallerOut Format

	// GateCushion extends echo suppression past computed playback end.
	// Zero means DefaultGateCushion.
	GateCushion time.Duration

	Logger *slog.Logger

	// Clock overrides time.Now for the echo gate. Nil means real time.
	Clock func() time.Time
}

// Session bridges one call. Create with NewSession, drive with Run.
type Session struct {
	conn   MediaConn
	ai     AIStream
	cfg    SessionConfig
	gate   *echoGate
	pacer  *pacer
	logger *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}

	mu              sync.Mutex
	upstreamDropped int
}

// NewSession wires a telephony connection to an AI stream. Both formats
// must be valid.
func NewSession(conn MediaConn, ai AIStream, cfg SessionConfig) (*Session, error) {
	if err := cfg.Caller.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.AI.Validate(); err != nil {
		return nil, err
	}
	if cfg.CallerOut == (Format{}) {
		cfg.CallerOut = cfg.Caller
	}
	if err := cfg.CallerOut.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("call_id", cfg.CallID)
	return &Session{
		conn:   conn,
		ai:     ai,
		cfg:    cfg,
		gate:   newEchoGate(cfg.GateCushion, cfg.Clock),
		pacer:  newPacer(cfg.CallerOut),
		logger: logger,
		closed: make(chan struct{}),
	}, nil
}

// Run pumps audio both ways until either side closes, the context is
// canceled, or a write fails. It always tears down both connections
// before returning.
func (s *Session) Run(ctx context.Context) error {
	defer s.teardown()

	errCh := make(chan error, 3)
	go func() { errCh <- s.callerLoop() }()
	go func() { errCh <- s.aiLoop() }()
	go func() { errCh <- s.paceLoop(ctx) }()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errCh:
	case <-s.closed:
	}
	s.teardown()

	if dropped := s.pacer.droppedBytes(); dropped > 0 {
		s.logger.Warn("downstream audio dropped to backpressure", "bytes", dropped)
	}
	return err
}

// Close ends the session from outside Run.
func (s *Session) Close() {
	s.teardown()
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
		s.ai.Close()
	})
}

// callerLoop reads telephony frames: binary frames are caller audio,
// text frames are control. Caller audio is dropped while the echo gate
// is closed; a gated frame is gone, not deferred, because stale caller
// audio is worse than none.
func (s *Session) callerLoop() error {
	expect := s.cfg.Caller.FrameBytes()
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
			}
			return fmt.Errorf("bridge: caller read: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if err := s.handleControl(data); err != nil {
				s.logger.Warn("control frame rejected", "error", err)
			}
		case websocket.BinaryMessage:
			if len(data) == 0 || len(data)%s.cfg.Caller.bytesPerSample() != 0 {
				s.logger.Warn("malformed caller frame", "len", len(data), "expect", expect)
				continue
			}
			if !s.gate.open() {
				s.mu.Lock()
				s.upstreamDropped += len(data)
				s.mu.Unlock()
				continue
			}
			audio := transcode(data, s.cfg.Caller, s.cfg.AI)
			if err := s.ai.AppendAudio(audio); err != nil {
				return fmt.Errorf("bridge: upstream append: %w", err)
			}
		}
	}
}

func (s *Session) handleControl(data []byte) error {
	var cf controlFrame
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("bridge: parse control frame: %w", err)
	}
	switch cf.Type {
	case "say":
		if cf.Text == "" {
			return fmt.Errorf("bridge: say frame without text")
		}
		if err := s.ai.SendText(cf.Text); err != nil {
			return err
		}
		return s.ai.CreateResponse("")
	case "commit":
		return s.ai.CommitInput()
	default:
		return fmt.Errorf("bridge: unknown control frame %q", cf.Type)
	}
}

// aiLoop consumes realtime events. Audio deltas are transcoded to the
// caller format, buffered for pacing, and charged to the echo gate.
func (s *Session) aiLoop() error {
	for ev, err := range s.ai.Events() {
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
			}
			return fmt.Errorf("bridge: ai stream: %w", err)
		}
		switch ev.Type {
		case realtime.EventAudioDelta:
			if len(ev.Audio) == 0 {
				continue
			}
			s.pacer.push(transcode(ev.Audio, s.cfg.AI, s.cfg.CallerOut))
			s.gate.hold(s.pacer.buffered())
		case realtime.EventSpeechStarted:
			// Caller barge-in detected by the service. Nothing to do
			// locally; the service stops the response itself.
		case realtime.EventResponseDone:
			s.logger.Debug("response complete")
		}
	}
	return nil
}

// paceLoop emits one caller-format frame every FrameInterval, padding
// underruns with silence so the telephony side never starves.
func (s *Session) paceLoop(ctx context.Context) error {
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return nil
		case <-ticker.C:
			frame := s.pacer.nextFrame()
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				select {
				case <-s.closed:
					return nil
				default:
				}
				return fmt.Errorf("bridge: caller write: %w", err)
			}
		}
	}
}

// UpstreamDropped reports caller audio bytes discarded by the echo gate.
func (s *Session) UpstreamDropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upstreamDropped
}
