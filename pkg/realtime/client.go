package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client dials realtime sessions against one service endpoint.
type Client struct {
	config *clientConfig
}

type clientConfig struct {
	url              string
	token            string
	header           http.Header
	handshakeTimeout time.Duration
	logger           *slog.Logger
}

// Option configures the Client.
type Option func(*clientConfig)

// NewClient creates a client for the service at wsURL. The token, when
// non-empty, is sent as a bearer credential on the handshake.
func NewClient(wsURL, token string, opts ...Option) *Client {
	cfg := &clientConfig{
		url:              wsURL,
		token:            token,
		handshakeTimeout: 10 * time.Second,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{config: cfg}
}

// WithHeader adds an extra handshake header.
func WithHeader(key, value string) Option {
	return func(c *clientConfig) {
		if c.header == nil {
			c.header = http.Header{}
		}
		c.header.Set(key, value)
	}
}

// WithHandshakeTimeout bounds the WebSocket handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.handshakeTimeout = d
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// SessionConfig is sent as a session.update immediately after connect.
type SessionConfig struct {
	Model             string         `json:"model,omitempty"`
	Instructions      string         `json:"instructions,omitempty"`
	Voice             string         `json:"voice,omitempty"`
	Modalities        []string       `json:"modalities,omitempty"`
	InputAudioFormat  string         `json:"input_audio_format,omitempty"`
	OutputAudioFormat string         `json:"output_audio_format,omitempty"`
	Temperature       *float64       `json:"temperature,omitempty"`
	TurnDetection     *TurnDetection `json:"turn_detection,omitempty"`
}

// TurnDetection configures the service's voice activity detection.
type TurnDetection struct {
	Type              string  `json:"type"` // "server_vad" or "semantic_vad"
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
}

// ServerVAD is the default server-side turn detection: the service
// decides when the caller's turn ends and commits the input itself.
func ServerVAD() *TurnDetection {
	return &TurnDetection{Type: "server_vad"}
}

// Dial connects and starts the background reader. When cfg is non-nil a
// session.update carrying it is the first event on the wire.
func (c *Client) Dial(ctx context.Context, cfg *SessionConfig) (*Session, error) {
	u, err := url.Parse(c.config.url)
	if err != nil {
		return nil, fmt.Errorf("realtime: parse url: %w", err)
	}

	header := http.Header{}
	for k, vs := range c.config.header {
		header[k] = vs
	}
	if c.config.token != "" {
		header.Set("Authorization", "Bearer "+c.config.token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.config.handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime: connect: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("realtime: connect: %w", err)
	}

	s := &Session{
		conn:     conn,
		logger:   c.config.logger,
		closeCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 128),
	}
	if cfg != nil {
		if err := s.UpdateSession(cfg); err != nil {
			conn.Close()
			return nil, err
		}
	}
	go s.readLoop()
	return s, nil
}

// newEventID generates a client event id.
func newEventID() string {
	return "evt_" + uuid.New().String()[:12]
}
