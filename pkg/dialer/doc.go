// Package dialer places outbound calls that land in an AI meeting.
//
// One Dial is three control-plane calls: create a meeting, create an
// attendee whose join token admits the phone leg, then ask the SIP media
// application to dial the number. The join metadata rides out on the
// call twice, as X-prefixed SIP headers and as bare-named application
// arguments, because providers differ on which of the two survives to
// the answer event. The same metadata is also written to the session
// store so the answer handler has a third way to find it.
//
// Failures are not retried here. A typed DialError reports how far the
// sequence got so the caller can clean up or retry deliberately.
package dialer
