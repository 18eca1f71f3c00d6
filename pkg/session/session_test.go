package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haivivi/voicebridge/pkg/session"
)

func newTestStore(t *testing.T) session.Store {
	t.Helper()
	s := session.NewMemory(0)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m := session.Metadata{MeetingID: "m1", JoinToken: "t1", AttendeeID: "a1"}

	_, err := s.Get(ctx, "tx1")
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Put(ctx, "tx1", m); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "tx1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MeetingID != "m1" || got.JoinToken != "t1" || got.AttendeeID != "a1" {
		t.Fatalf("Get = %+v, want %+v", got, m)
	}

	if err := s.Delete(ctx, "tx1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "tx1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing entry is not an error.
	if err := s.Delete(ctx, "no-such-tx"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Put(ctx, "tx1", session.Metadata{MeetingID: "m1", JoinToken: "t1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "tx1", session.Metadata{MeetingID: "m2", JoinToken: "t2"}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err := s.Get(ctx, "tx1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MeetingID != "m2" || got.JoinToken != "t2" {
		t.Fatalf("Get = %+v, want the second write", got)
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := session.NewMemory(30 * time.Minute)
	t.Cleanup(func() { s.Close() })

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	if err := s.Put(ctx, "tx1", session.Metadata{MeetingID: "m1", JoinToken: "t1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Still live just inside the window.
	now = now.Add(29 * time.Minute)
	if _, err := s.Get(ctx, "tx1"); err != nil {
		t.Fatalf("Get inside TTL: %v", err)
	}

	// Expired past the window.
	now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "tx1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestTTLRefreshOnPut(t *testing.T) {
	ctx := context.Background()
	s := session.NewMemory(10 * time.Minute)
	t.Cleanup(func() { s.Close() })

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	if err := s.Put(ctx, "tx1", session.Metadata{MeetingID: "m1", JoinToken: "t1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	now = now.Add(9 * time.Minute)
	if err := s.Put(ctx, "tx1", session.Metadata{MeetingID: "m1", JoinToken: "t1"}); err != nil {
		t.Fatalf("Put refresh: %v", err)
	}
	now = now.Add(9 * time.Minute)
	if _, err := s.Get(ctx, "tx1"); err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []string{"tx1", "tx2", "tx3"} {
		if err := s.Put(ctx, id, session.Metadata{MeetingID: "m-" + id, JoinToken: "t"}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}
	seen := map[string]bool{}
	err := s.List(ctx, func(id string, m session.Metadata) bool {
		seen[id] = true
		return true
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("List saw %d entries, want 3: %v", len(seen), seen)
	}
}

func TestJoinable(t *testing.T) {
	tests := []struct {
		m    session.Metadata
		want bool
	}{
		{session.Metadata{MeetingID: "m", JoinToken: "t"}, true},
		{session.Metadata{MeetingID: "m"}, false},
		{session.Metadata{JoinToken: "t"}, false},
		{session.Metadata{}, false},
	}
	for _, tt := range tests {
		if got := tt.m.Joinable(); got != tt.want {
			t.Errorf("Joinable(%+v) = %v, want %v", tt.m, got, tt.want)
		}
	}
}
