package sma

// Invocation event types dispatched by the telephony control plane.
const (
	EventNewInboundCall        = "NEW_INBOUND_CALL"
	EventNewOutboundCall       = "NEW_OUTBOUND_CALL"
	EventRinging               = "RINGING"
	EventCallAnswered          = "CALL_ANSWERED"
	EventActionSuccess         = "ACTION_SUCCESS"
	EventActionFailed          = "ACTION_FAILED"
	EventHangup                = "HANGUP"
	EventInvalidLambdaResponse = "INVALID_LAMBDA_RESPONSE"
)

// Call leg directions.
const (
	DirectionInbound  = "Inbound"
	DirectionOutbound = "Outbound"
)

// Event is one control-plane invocation for a call transaction.
type Event struct {
	SchemaVersion       string      `json:"SchemaVersion"`
	Sequence            int         `json:"Sequence,omitempty"`
	InvocationEventType string      `json:"InvocationEventType"`
	CallDetails         CallDetails `json:"CallDetails"`
	ActionData          *ActionData `json:"ActionData,omitempty"`
}

// CallDetails carries the transaction identity and participant legs.
type CallDetails struct {
	TransactionID         string            `json:"TransactionId"`
	AwsAccountID          string            `json:"AwsAccountId,omitempty"`
	AwsRegion             string            `json:"AwsRegion,omitempty"`
	SipMediaApplicationID string            `json:"SipMediaApplicationId,omitempty"`
	Participants          []Participant     `json:"Participants,omitempty"`
	SipHeaders            map[string]string `json:"SipHeaders,omitempty"`
	Arguments             map[string]string `json:"Arguments,omitempty"`
	TransactionAttributes map[string]string `json:"TransactionAttributes,omitempty"`
}

// Participant is one leg of the call.
type Participant struct {
	CallID         string `json:"CallId"`
	ParticipantTag string `json:"ParticipantTag,omitempty"`
	From           string `json:"From,omitempty"`
	To             string `json:"To,omitempty"`
	Direction      string `json:"Direction,omitempty"`
	Status         string `json:"Status,omitempty"`
	StartTimeMs    int64  `json:"StartTimeInMilliseconds,omitempty"`
}

// ActionData reports the outcome context for ACTION_SUCCESS / ACTION_FAILED
// events: which action kind completed or failed.
type ActionData struct {
	Type         string            `json:"Type"`
	Parameters   map[string]any    `json:"Parameters,omitempty"`
	ErrorType    string            `json:"ErrorType,omitempty"`
	ErrorMessage string            `json:"ErrorMessage,omitempty"`
}

// LegCallID returns the call id of the leg the handler should act on:
// the first participant whose direction matches dir, falling back to the
// first participant present.
func (e *Event) LegCallID(dir string) string {
	for _, p := range e.CallDetails.Participants {
		if p.Direction == dir {
			return p.CallID
		}
	}
	if len(e.CallDetails.Participants) > 0 {
		return e.CallDetails.Participants[0].CallID
	}
	return ""
}
