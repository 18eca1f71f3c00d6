package callfsm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/voicebridge/pkg/session"
	"github.com/haivivi/voicebridge/pkg/sma"
)

// Machine decides the action list for each control-plane event. It holds
// no per-call state itself; everything about a transaction lives in the
// session store, so any process instance can handle any invocation.
type Machine struct {
	cfg    Config
	store  session.Store
	logger *slog.Logger
	now    func() time.Time
}

// New returns a machine backed by store. A nil logger discards logs.
func New(cfg Config, store session.Store, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{
		cfg:    cfg.withDefaults(),
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// HandleEvent maps one event to a response. The response is never nil and
// never has an empty action list, even when err is non-nil: the caller can
// always hand resp to the control plane and keep the call alive.
func (m *Machine) HandleEvent(ctx context.Context, ev *sma.Event) (resp *sma.Response, err error) {
	txID := ev.CallDetails.TransactionID
	log := m.logger.With("transaction_id", txID, "event", ev.InvocationEventType)

	meta, err := m.store.Get(ctx, txID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		log.Error("session lookup failed", "error", err)
		return m.holdResponse(), fmt.Errorf("callfsm: load session %q: %w", txID, err)
	}
	prev := State(meta.State)
	if prev == "" {
		prev = StateIdle
	}

	var next State
	switch ev.InvocationEventType {
	case sma.EventNewInboundCall:
		resp, next = m.onNewInbound(ev)
	case sma.EventNewOutboundCall:
		resp, next = m.onNewOutbound(ctx, ev, &meta, log)
	case sma.EventRinging:
		resp, next = sma.NewResponse(m.shortPause()), StateRinging
	case sma.EventCallAnswered:
		resp, next = m.onAnswered(ev, &meta, log)
	case sma.EventActionSuccess:
		resp, next = m.onActionSuccess(ev, prev)
	case sma.EventActionFailed:
		resp, next = m.onActionFailed(ev, &meta, log)
	case sma.EventHangup:
		log.Info("call ended")
		if derr := m.store.Delete(ctx, txID); derr != nil {
			log.Error("session eviction failed", "error", derr)
		}
		return sma.NewResponse(m.shortPause()), nil
	case sma.EventInvalidLambdaResponse:
		log.Warn("control plane rejected previous response",
			"error_type", errorType(ev), "error_message", errorMessage(ev))
		resp, next = m.holdResponse(), prev
	default:
		log.Warn("unrecognized event type")
		resp, next = m.holdResponse(), prev
	}

	if verr := resp.Validate(); verr != nil {
		log.Error("built an invalid response, substituting hold", "error", verr)
		resp = m.holdResponse()
	}

	if next.Terminal() {
		if derr := m.store.Delete(ctx, txID); derr != nil {
			log.Error("session eviction failed", "error", derr)
		}
		return resp, nil
	}
	meta.State = string(next)
	meta.StoredAt = m.now().UnixMilli()
	if perr := m.store.Put(ctx, txID, meta); perr != nil {
		log.Error("session write failed", "error", perr)
		return resp, fmt.Errorf("callfsm: store session %q: %w", txID, perr)
	}
	return resp, nil
}

func (m *Machine) onNewInbound(ev *sma.Event) (*sma.Response, State) {
	actions := []sma.Action{m.speak(m.cfg.Greeting)}
	if m.cfg.BridgeEndpoint != "" {
		actions = append(actions, m.bridge())
	}
	return sma.NewResponse(actions...), StateRinging
}

func (m *Machine) onNewOutbound(ctx context.Context, ev *sma.Event, meta *session.Metadata, log *slog.Logger) (*sma.Response, State) {
	jh := sma.JoinHeadersFromEvent(ev)
	if jh.Complete() {
		meta.MeetingID = jh.MeetingID
		meta.JoinToken = jh.JoinToken
		meta.AttendeeID = jh.AttendeeID
	} else if !jh.Empty() {
		log.Warn("outbound call carries incomplete join metadata",
			"has_meeting_id", jh.MeetingID != "", "has_attendee_id", jh.AttendeeID != "")
	}
	if leg := ev.LegCallID(sma.DirectionOutbound); leg != "" {
		meta.LegCallID = leg
	}
	return sma.NewResponse(m.speak(m.cfg.HoldMessage), m.shortPause()), StateRinging
}

func (m *Machine) onAnswered(ev *sma.Event, meta *session.Metadata, log *slog.Logger) (*sma.Response, State) {
	leg := ev.LegCallID(sma.DirectionOutbound)
	if leg == "" {
		leg = meta.LegCallID
	}
	meta.LegCallID = leg

	// Join metadata on the event wins; the store is the fallback for
	// providers that strip custom headers between invocations.
	jh := sma.JoinHeadersFromEvent(ev)
	if jh.Complete() {
		meta.MeetingID = jh.MeetingID
		meta.JoinToken = jh.JoinToken
		meta.AttendeeID = jh.AttendeeID
	}
	if meta.Joinable() && leg != "" {
		return sma.NewResponse(sma.JoinMeeting{
			CallID:    leg,
			MeetingID: meta.MeetingID,
			JoinToken: meta.JoinToken,
		}), StateBridging
	}

	log.Warn("answered without joinable metadata",
		"has_meeting_id", meta.MeetingID != "", "has_leg", leg != "")
	if m.cfg.BridgeEndpoint != "" {
		return sma.NewResponse(m.speak(m.cfg.HoldMessage), m.bridge()), StateBridging
	}
	// Park in the retry window: a later invocation may find the
	// metadata the answer event was missing.
	return sma.NewResponse(m.speak(m.cfg.HoldMessage), m.longPause()), StateRinging
}

func (m *Machine) onActionSuccess(ev *sma.Event, prev State) (*sma.Response, State) {
	kind := ""
	if ev.ActionData != nil {
		kind = ev.ActionData.Type
	}
	switch kind {
	case sma.ActionTypeJoinMeeting, sma.ActionTypeCallAndBridge:
		// The media path is live. A short pause keeps the response
		// well-formed without speaking over the conversation.
		return sma.NewResponse(m.shortPause()), StateActive
	case sma.ActionTypeHangup:
		return sma.NewResponse(m.shortPause()), StateCompleted
	default:
		return sma.NewResponse(m.shortPause()), prev
	}
}

func (m *Machine) onActionFailed(ev *sma.Event, meta *session.Metadata, log *slog.Logger) (*sma.Response, State) {
	log.Warn("action failed",
		"action", errorAction(ev), "error_type", errorType(ev), "error_message", errorMessage(ev))
	meta.Failures++

	if m.cfg.BridgeEndpoint != "" {
		return sma.NewResponse(m.speak(m.cfg.Apology), m.bridge()), StateBridging
	}
	if meta.Failures > 1 && m.cfg.HangupOnRepeatedFailure {
		return sma.NewResponse(m.speak(m.cfg.Apology), sma.Hangup{SipResponseCode: 480}), StateFailed
	}
	// One built-in retry window: park the caller, the next CALL_ANSWERED
	// or metadata write gets another chance to join.
	return sma.NewResponse(m.speak(m.cfg.Apology), m.longPause()), StateRinging
}

// holdResponse is the universal safe fallback: audible, well-formed, and
// never a hangup.
func (m *Machine) holdResponse() *sma.Response {
	return sma.NewResponse(m.speak(m.cfg.HoldMessage), m.shortPause())
}

func (m *Machine) speak(text string) sma.Speak {
	return sma.Speak{
		Text:         text,
		VoiceID:      m.cfg.VoiceID,
		Engine:       m.cfg.Engine,
		LanguageCode: m.cfg.LanguageCode,
	}
}

func (m *Machine) bridge() sma.CallAndBridge {
	return sma.CallAndBridge{
		EndpointURI:    m.cfg.BridgeEndpoint,
		CallerID:       m.cfg.CallerID,
		TimeoutSeconds: int(m.cfg.BridgeTimeout / time.Second),
	}
}

func (m *Machine) shortPause() sma.Pause {
	return sma.Pause{DurationMs: int(m.cfg.ShortPause / time.Millisecond)}
}

func (m *Machine) longPause() sma.Pause {
	return sma.Pause{DurationMs: int(m.cfg.LongPause / time.Millisecond)}
}

func errorAction(ev *sma.Event) string {
	if ev.ActionData == nil {
		return ""
	}
	return ev.ActionData.Type
}

func errorType(ev *sma.Event) string {
	if ev.ActionData == nil {
		return ""
	}
	return ev.ActionData.ErrorType
}

func errorMessage(ev *sma.Event) string {
	if ev.ActionData == nil {
		return ""
	}
	return ev.ActionData.ErrorMessage
}
