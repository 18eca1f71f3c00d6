// Package realtime is a WebSocket client for streaming voice AI services.
//
// A Session is full duplex: the caller appends audio and control events
// while a background reader delivers server events through the Events
// iterator. Audio arrives base64-encoded inside JSON events; the reader
// decodes it eagerly so consumers see raw bytes. Events the client does
// not recognize still flow through with their raw payload attached, and
// frames that are not JSON at all are logged and dropped rather than
// tearing down the session.
package realtime
