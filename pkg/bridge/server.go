package bridge

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

// SecretHeader authenticates the telephony side. The media plane has no
// session cookies; a shared secret is the whole handshake.
const SecretHeader = "X-Bridge-Secret"

// AIDialer opens the realtime leg for a call.
type AIDialer func(ctx context.Context, callID string) (AIStream, error)

// Server upgrades telephony media connections and runs one Session per
// call.
type Server struct {
	secret   string
	dial     AIDialer
	aiFormat Format
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewServer builds a media server. secret may be empty to disable
// authentication (tests, local runs).
func NewServer(secret string, aiFormat Format, dial AIDialer, logger *slog.Logger) (*Server, error) {
	if err := aiFormat.Validate(); err != nil {
		return nil, err
	}
	if dial == nil {
		return nil, fmt.Errorf("bridge: nil dialer")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		secret:   secret,
		dial:     dial,
		aiFormat: aiFormat,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The telephony provider is not a browser; origin checks
			// do not apply.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
	}, nil
}

// ServeHTTP handles one media connection. Query parameters:
//
//	callId  required, correlates with the control plane transaction
//	enc     inbound frame encoding, mulaw (default) or pcm16
//	sr      inbound sample rate, default 8000
//	oenc    outbound frame encoding, default same as enc
//	osr     outbound sample rate, default same as sr
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	q := r.URL.Query()
	callID := q.Get("callId")
	if callID == "" {
		http.Error(w, "missing callId", http.StatusBadRequest)
		return
	}
	caller, err := queryFormat(q.Get("enc"), q.Get("sr"), Format{Encoding: EncodingMulaw, SampleRateHz: 8000})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	callerOut, err := queryFormat(q.Get("oenc"), q.Get("osr"), caller)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ai, err := s.dial(r.Context(), callID)
	if err != nil {
		s.logger.Error("realtime dial failed", "call_id", callID, "error", err)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ai.Close()
		s.logger.Error("upgrade failed", "call_id", callID, "error", err)
		return
	}

	sess, err := NewSession(conn, ai, SessionConfig{
		CallID:    callID,
		Caller:    caller,
		CallerOut: callerOut,
		AI:        s.aiFormat,
		Logger:    s.logger,
	})
	if err != nil {
		conn.Close()
		ai.Close()
		s.logger.Error("session setup failed", "call_id", callID, "error", err)
		return
	}

	s.track(callID, sess)
	defer s.untrack(callID)

	s.logger.Info("media session started", "call_id", callID,
		"encoding", caller.Encoding, "rate", caller.SampleRateHz)
	if err := sess.Run(r.Context()); err != nil && err != context.Canceled {
		s.logger.Warn("media session ended", "call_id", callID, "error", err)
		return
	}
	s.logger.Info("media session ended", "call_id", callID)
}

// Shutdown closes every live session.
func (s *Server) Shutdown() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}

// ActiveCalls reports how many sessions are live.
func (s *Server) ActiveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) track(callID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.sessions[callID]; ok {
		old.Close()
	}
	s.sessions[callID] = sess
}

func (s *Server) untrack(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, callID)
}

func queryFormat(enc, rate string, base Format) (Format, error) {
	f := base
	if enc != "" {
		f.Encoding = Encoding(enc)
	}
	if rate != "" {
		hz, err := strconv.Atoi(rate)
		if err != nil {
			return Format{}, fmt.Errorf("bridge: invalid sample rate %q", rate)
		}
		f.SampleRateHz = hz
	}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}
