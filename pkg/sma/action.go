package sma

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Action kinds accepted by the control plane.
const (
	ActionTypeSpeak         = "Speak"
	ActionTypePause         = "Pause"
	ActionTypeCallAndBridge = "CallAndBridge"
	ActionTypeJoinMeeting   = "JoinMeeting"
	ActionTypeHangup        = "Hangup"
)

// Action is one entry of the ordered action list returned to the control
// plane. The union is closed: only the types in this package implement it.
type Action interface {
	// Type returns the wire name of the action kind.
	Type() string
	json.Marshaler
}

// wire is the {Type, Parameters} envelope every action marshals into.
type wire struct {
	Type       string `json:"Type"`
	Parameters any    `json:"Parameters"`
}

// Speak plays synthesized speech to the caller.
type Speak struct {
	Text         string
	VoiceID      string
	Engine       string
	LanguageCode string
}

func (Speak) Type() string { return ActionTypeSpeak }

func (a Speak) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{ActionTypeSpeak, struct {
		Text         string `json:"Text"`
		Engine       string `json:"Engine,omitempty"`
		LanguageCode string `json:"LanguageCode,omitempty"`
		VoiceID      string `json:"VoiceId,omitempty"`
	}{a.Text, a.Engine, a.LanguageCode, a.VoiceID}})
}

// Pause holds the call silent for a duration.
type Pause struct {
	DurationMs int
}

func (Pause) Type() string { return ActionTypePause }

func (a Pause) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{ActionTypePause, struct {
		DurationInMilliseconds int `json:"DurationInMilliseconds"`
	}{a.DurationMs}})
}

// CallAndBridge dials a static endpoint and bridges the caller to it.
type CallAndBridge struct {
	EndpointURI    string
	CallerID       string
	TimeoutSeconds int
}

func (CallAndBridge) Type() string { return ActionTypeCallAndBridge }

func (a CallAndBridge) MarshalJSON() ([]byte, error) {
	type endpoint struct {
		BridgeEndpointType string `json:"BridgeEndpointType"`
		URI                string `json:"Uri"`
	}
	return json.Marshal(wire{ActionTypeCallAndBridge, struct {
		CallTimeoutSeconds int        `json:"CallTimeoutSeconds"`
		CallerIDNumber     string     `json:"CallerIdNumber,omitempty"`
		Endpoints          []endpoint `json:"Endpoints"`
	}{a.TimeoutSeconds, a.CallerID, []endpoint{{"PSTN", a.EndpointURI}}}})
}

// JoinMeeting attaches the leg's media to a meeting using a per-attendee
// join token.
type JoinMeeting struct {
	CallID    string
	MeetingID string
	JoinToken string
}

func (JoinMeeting) Type() string { return ActionTypeJoinMeeting }

func (a JoinMeeting) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{ActionTypeJoinMeeting, struct {
		CallID    string `json:"CallId"`
		MeetingID string `json:"MeetingId"`
		JoinToken string `json:"JoinToken"`
	}{a.CallID, a.MeetingID, a.JoinToken}})
}

// Hangup terminates the leg.
type Hangup struct {
	SipResponseCode int
}

func (Hangup) Type() string { return ActionTypeHangup }

func (a Hangup) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{ActionTypeHangup, struct {
		SipResponseCode int `json:"SipResponseCode,omitempty"`
	}{a.SipResponseCode}})
}

// Response is the full reply to one control-plane invocation.
type Response struct {
	SchemaVersion         string            `json:"SchemaVersion"`
	Actions               []Action          `json:"Actions"`
	TransactionAttributes map[string]string `json:"TransactionAttributes,omitempty"`
}

// NewResponse wraps actions in a versioned response envelope.
func NewResponse(actions ...Action) *Response {
	return &Response{SchemaVersion: "1.0", Actions: actions}
}

// Validation errors.
var (
	ErrEmptyActions = errors.New("sma: response has no actions")
)

// Validate rejects responses the control plane would bounce back as
// INVALID_LAMBDA_RESPONSE.
func (r *Response) Validate() error {
	if len(r.Actions) == 0 {
		return ErrEmptyActions
	}
	for i, a := range r.Actions {
		switch v := a.(type) {
		case Speak:
			if v.Text == "" {
				return fmt.Errorf("sma: action %d: Speak without text", i)
			}
		case Pause:
			if v.DurationMs <= 0 {
				return fmt.Errorf("sma: action %d: Pause without duration", i)
			}
		case CallAndBridge:
			if v.EndpointURI == "" {
				return fmt.Errorf("sma: action %d: CallAndBridge without endpoint", i)
			}
		case JoinMeeting:
			if v.CallID == "" || v.MeetingID == "" || v.JoinToken == "" {
				return fmt.Errorf("sma: action %d: JoinMeeting with incomplete join metadata", i)
			}
		case Hangup:
		default:
			return fmt.Errorf("sma: action %d: unknown action kind %T", i, a)
		}
	}
	return nil
}
