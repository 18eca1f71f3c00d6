package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/haivivi/voicebridge/pkg/session"
)

func newBadgerStore(t *testing.T) *session.Badger {
	t.Helper()
	s, err := session.NewBadger(session.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerPutGet(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	m := session.Metadata{MeetingID: "m1", JoinToken: "t1", AttendeeID: "a1", LegCallID: "leg-a"}
	if err := s.Put(ctx, "tx1", m); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "tx1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MeetingID != "m1" || got.JoinToken != "t1" || got.AttendeeID != "a1" || got.LegCallID != "leg-a" {
		t.Fatalf("Get = %+v", got)
	}
}

func TestBadgerNotFound(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestBadgerOverwriteAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

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
	if got.MeetingID != "m2" {
		t.Fatalf("Get after overwrite = %+v", got)
	}

	if err := s.Delete(ctx, "tx1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "tx1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBadgerList(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	for _, id := range []string{"tx-a", "tx-b"} {
		if err := s.Put(ctx, id, session.Metadata{MeetingID: "m", JoinToken: "t"}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}
	var ids []string
	err := s.List(ctx, func(id string, _ session.Metadata) bool {
		ids = append(ids, id)
		return true
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("List = %v, want 2 entries", ids)
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := session.NewBadger(session.BadgerOptions{}); err == nil {
		t.Fatal("expected error for on-disk mode without Dir")
	}
}
