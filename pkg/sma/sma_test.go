package sma

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"X-Meeting-Id", "meetingid"},
		{"MeetingId", "meetingid"},
		{"MEETING_ID", "meetingid"},
		{"meetingId", "meetingid"},
		{"x-meeting-id", "meetingid"},
		{"X-Join-Token", "jointoken"},
		{"JOIN_TOKEN", "jointoken"},
		{"X-Attendee-Id", "attendeeid"},
		{"AttendeeId", "attendeeid"},
		// Keys that merely start with x keep their prefix.
		{"xylophone", "xylophone"},
	}
	for _, tt := range tests {
		if got := canonicalKey(tt.in); got != tt.want {
			t.Errorf("canonicalKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractJoinHeaders(t *testing.T) {
	j := ExtractJoinHeaders(
		map[string]string{"X-Meeting-Id": "m1"},
		map[string]string{"MEETING_ID": "m2", "JoinToken": "t1"},
		map[string]string{"x-attendee-id": "a1"},
	)
	if j.MeetingID != "m1" {
		t.Errorf("MeetingID = %q, want m1 (first map wins)", j.MeetingID)
	}
	if j.JoinToken != "t1" {
		t.Errorf("JoinToken = %q, want t1", j.JoinToken)
	}
	if j.AttendeeID != "a1" {
		t.Errorf("AttendeeID = %q, want a1", j.AttendeeID)
	}
	if !j.Complete() {
		t.Error("Complete() = false with meeting id and token present")
	}
}

func TestJoinHeadersIncomplete(t *testing.T) {
	// A meeting id without a join token must not look joinable.
	j := ExtractJoinHeaders(map[string]string{"MeetingId": "m1"})
	if j.Empty() {
		t.Error("Empty() = true with meeting id present")
	}
	if j.Complete() {
		t.Error("Complete() = true without join token")
	}
}

func TestEventDecode(t *testing.T) {
	raw := []byte(`{
		"SchemaVersion": "1.0",
		"InvocationEventType": "CALL_ANSWERED",
		"CallDetails": {
			"TransactionId": "tx1",
			"AwsRegion": "us-east-1",
			"Participants": [
				{"CallId": "leg-a", "Direction": "Outbound", "To": "+15550100"}
			],
			"SipHeaders": {"X-Meeting-Id": "m1", "X-Join-Token": "t1"}
		}
	}`)
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.InvocationEventType != EventCallAnswered {
		t.Errorf("event type = %q", ev.InvocationEventType)
	}
	if ev.CallDetails.TransactionID != "tx1" {
		t.Errorf("transaction id = %q", ev.CallDetails.TransactionID)
	}
	if got := ev.LegCallID(DirectionOutbound); got != "leg-a" {
		t.Errorf("LegCallID = %q, want leg-a", got)
	}
	if j := JoinHeadersFromEvent(&ev); !j.Complete() || j.MeetingID != "m1" {
		t.Errorf("join headers = %+v", j)
	}
}

func TestActionJSONShapes(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{
			Speak{Text: "hello", VoiceID: "Joanna", Engine: "neural", LanguageCode: "en-US"},
			`{"Type":"Speak","Parameters":{"Text":"hello","Engine":"neural","LanguageCode":"en-US","VoiceId":"Joanna"}}`,
		},
		{
			Pause{DurationMs: 3000},
			`{"Type":"Pause","Parameters":{"DurationInMilliseconds":3000}}`,
		},
		{
			CallAndBridge{EndpointURI: "+15550100", CallerID: "+15550199", TimeoutSeconds: 45},
			`{"Type":"CallAndBridge","Parameters":{"CallTimeoutSeconds":45,"CallerIdNumber":"+15550199","Endpoints":[{"BridgeEndpointType":"PSTN","Uri":"+15550100"}]}}`,
		},
		{
			JoinMeeting{CallID: "leg-a", MeetingID: "m1", JoinToken: "t1"},
			`{"Type":"JoinMeeting","Parameters":{"CallId":"leg-a","MeetingId":"m1","JoinToken":"t1"}}`,
		},
		{
			Hangup{},
			`{"Type":"Hangup","Parameters":{}}`,
		},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.action)
		if err != nil {
			t.Fatalf("marshal %T: %v", tt.action, err)
		}
		if string(got) != tt.want {
			t.Errorf("%T JSON = %s, want %s", tt.action, got, tt.want)
		}
	}
}

func TestResponseValidate(t *testing.T) {
	if err := NewResponse().Validate(); !errors.Is(err, ErrEmptyActions) {
		t.Errorf("empty response: err = %v, want ErrEmptyActions", err)
	}
	if err := NewResponse(Speak{Text: "hi"}, Pause{DurationMs: 500}).Validate(); err != nil {
		t.Errorf("valid response: %v", err)
	}
	// Incomplete join metadata must never pass validation.
	if err := NewResponse(JoinMeeting{CallID: "c", MeetingID: "m"}).Validate(); err == nil {
		t.Error("JoinMeeting without token validated")
	}
	if err := NewResponse(Speak{}).Validate(); err == nil {
		t.Error("Speak without text validated")
	}
	if err := NewResponse(Pause{}).Validate(); err == nil {
		t.Error("Pause without duration validated")
	}
}
