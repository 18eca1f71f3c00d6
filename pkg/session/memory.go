package session

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Store with deadline-checked TTL. It is safe for
// concurrent use and intended for tests and single-invocation tooling;
// it does not survive the process, which real deployments must (see the
// package comment on invocation affinity).
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.RWMutex
	data map[string]memoryEntry
}

type memoryEntry struct {
	val       []byte
	expiresAt time.Time
}

// NewMemory creates an in-memory Store. A zero ttl means DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]memoryEntry),
	}
}

// SetClock replaces the time source. Tests use this to step through TTL
// expiry without sleeping.
func (s *Memory) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Memory) Put(_ context.Context, transactionID string, m Metadata) error {
	val, err := encodeMetadata(m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[transactionID] = memoryEntry{val: val, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *Memory) Get(_ context.Context, transactionID string) (Metadata, error) {
	s.mu.RLock()
	e, ok := s.data[transactionID]
	now := s.now()
	s.mu.RUnlock()
	if !ok || now.After(e.expiresAt) {
		return Metadata{}, ErrNotFound
	}
	return decodeMetadata(e.val)
}

func (s *Memory) Delete(_ context.Context, transactionID string) error {
	s.mu.Lock()
	delete(s.data, transactionID)
	s.mu.Unlock()
	return nil
}

func (s *Memory) List(_ context.Context, fn func(transactionID string, m Metadata) bool) error {
	s.mu.RLock()
	now := s.now()
	snapshot := make(map[string][]byte, len(s.data))
	for id, e := range s.data {
		if now.After(e.expiresAt) {
			continue
		}
		snapshot[id] = e.val
	}
	s.mu.RUnlock()

	for id, val := range snapshot {
		m, err := decodeMetadata(val)
		if err != nil {
			return err
		}
		if !fn(id, m) {
			return nil
		}
	}
	return nil
}

func (s *Memory) Close() error {
	return nil
}
