// Package session is the correlation store that threads join metadata
// between independently dispatched call events.
//
// The control plane invokes the call handler once per lifecycle event with
// no shared process memory, and invocation affinity is never guaranteed:
// metadata established while placing an outbound call (meeting id, join
// token, attendee id) must be durable enough for a later CALL_ANSWERED
// invocation, possibly in another process, to pick up. Entries are keyed
// by call transaction id, last-write-wins, and expire after a bounded TTL
// so the store cannot grow with abandoned calls.
//
// Two backends are provided: Badger (durable, per-entry TTL handled by the
// engine) and Memory (for tests and single-invocation tooling).
package session
