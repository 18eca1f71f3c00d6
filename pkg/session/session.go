package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no live entry exists for a transaction.
	ErrNotFound = errors.New("session: not found")
)

// DefaultTTL bounds how long an entry outlives its last write: the maximum
// call duration plus margin.
const DefaultTTL = 30 * time.Minute

// Metadata is the in-flight join context for one call transaction.
//
// JoinToken is a live credential: it exists only inside the store's TTL
// window and must never be logged or persisted anywhere else.
type Metadata struct {
	MeetingID  string `msgpack:"meeting_id"`
	JoinToken  string `msgpack:"join_token"`
	AttendeeID string `msgpack:"attendee_id"`
	LegCallID  string `msgpack:"leg_call_id,omitempty"`
	State      string `msgpack:"state,omitempty"`
	Failures   int    `msgpack:"failures,omitempty"`
	StoredAt   int64  `msgpack:"stored_at"` // unix milliseconds
}

// Joinable reports whether the metadata can back a join action. A meeting
// id without a join token is invalid and must never trigger a join.
func (m Metadata) Joinable() bool {
	return m.MeetingID != "" && m.JoinToken != ""
}

// Store is the correlation store contract. Writes are last-write-wins;
// each transaction id is logically single-writer, so no cross-transaction
// locking is offered.
type Store interface {
	// Put stores metadata for a transaction, refreshing its TTL.
	Put(ctx context.Context, transactionID string, m Metadata) error

	// Get retrieves live metadata. Returns ErrNotFound for missing or
	// expired entries.
	Get(ctx context.Context, transactionID string) (Metadata, error)

	// Delete removes an entry. Missing entries are not an error.
	Delete(ctx context.Context, transactionID string) error

	// List yields every live (transactionID, Metadata) pair. Order is
	// unspecified. Intended for operational tooling, not the hot path.
	List(ctx context.Context, fn func(transactionID string, m Metadata) bool) error

	// Close releases backend resources.
	Close() error
}

func encodeMetadata(m Metadata) ([]byte, error) {
	b, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("session: encode metadata: %w", err)
	}
	return b, nil
}

func decodeMetadata(b []byte) (Metadata, error) {
	var m Metadata
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return Metadata{}, fmt.Errorf("session: decode metadata: %w", err)
	}
	return m, nil
}
