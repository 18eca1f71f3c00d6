// Package bridge moves call audio between a telephony media stream and a
// realtime AI session.
//
// The telephony side speaks WebSocket: binary frames are audio in the
// negotiated encoding, text frames are small JSON control messages. The
// AI side is any realtime stream. Between them the bridge transcodes,
// paces downstream audio into fixed 20ms frames, and runs an echo gate:
// while AI speech is being played to the caller, upstream caller audio is
// dropped so the model does not hear its own voice come back through the
// caller's phone.
package bridge
