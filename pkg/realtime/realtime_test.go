package realtime

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseAudioDelta(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	b64 := base64.StdEncoding.EncodeToString(pcm)

	for _, field := range []string{"delta", "chunk", "audio"} {
		msg := []byte(`{"type":"response.audio.delta","` + field + `":"` + b64 + `"}`)
		ev, err := ParseEvent(msg)
		if err != nil {
			t.Fatalf("field %q: ParseEvent: %v", field, err)
		}
		if !bytes.Equal(ev.Audio, pcm) {
			t.Fatalf("field %q: Audio = %v, want %v", field, ev.Audio, pcm)
		}
	}
}

func TestParseAudioDeltaFieldPrecedence(t *testing.T) {
	want := base64.StdEncoding.EncodeToString([]byte("delta-wins"))
	other := base64.StdEncoding.EncodeToString([]byte("loses"))
	msg := []byte(`{"type":"response.audio.delta","delta":"` + want + `","chunk":"` + other + `"}`)

	ev, err := ParseEvent(msg)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if string(ev.Audio) != "delta-wins" {
		t.Fatalf("Audio = %q, want delta field to win", ev.Audio)
	}
}

func TestParseNonDeltaIgnoresAudioFields(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"response.done","delta":"not-audio"}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Audio != nil {
		t.Fatalf("Audio = %v, want nil for non-delta event", ev.Audio)
	}
}

func TestParseBadBase64(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type":"response.audio.delta","delta":"%%%"}`))
	if err == nil {
		t.Fatal("want error for undecodable audio payload")
	}
}

func TestParseNonJSON(t *testing.T) {
	_, err := ParseEvent([]byte("ping"))
	if err == nil {
		t.Fatal("want error for non-JSON frame")
	}
}

func TestParseUnknownTypePassesThrough(t *testing.T) {
	raw := `{"type":"rate_limits.updated","event_id":"evt_1"}`
	ev, err := ParseEvent([]byte(raw))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Type != "rate_limits.updated" || ev.EventID != "evt_1" {
		t.Fatalf("event = %+v", ev)
	}
	if string(ev.Raw) != raw {
		t.Fatalf("Raw = %s", ev.Raw)
	}
}

func TestSessionConfigCarriesTurnDetection(t *testing.T) {
	cfg := SessionConfig{
		Model:         "gpt-realtime",
		TurnDetection: ServerVAD(),
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"turn_detection":{"type":"server_vad"}`) {
		t.Fatalf("session config = %s", b)
	}

	// Omitted turn detection must not send an explicit null.
	b, err = json.Marshal(SessionConfig{Model: "gpt-realtime"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(b), "turn_detection") {
		t.Fatalf("session config = %s", b)
	}
}

func TestErrorEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"error","error":{"code":"invalid_request","message":"bad session"}}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	msg := ev.Err().Error()
	if !strings.Contains(msg, "bad session") || !strings.Contains(msg, "invalid_request") {
		t.Fatalf("Err = %q", msg)
	}
}
