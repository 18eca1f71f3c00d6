// Package sma models the SIP media application event interface: the
// lifecycle events the telephony control plane dispatches for a call, and
// the ordered action list a handler returns in response.
//
// The control plane treats every invocation as isolated; the only data a
// handler can rely on is what the event itself carries. Join metadata may
// arrive under several header-casing variants depending on which hop
// produced the event, so all alias probing happens here, at the ingress
// boundary, and downstream code only ever sees canonical fields.
//
// Responses are a closed union of action kinds. An empty or malformed
// response is itself a failure mode (the control plane answers it with an
// INVALID_LAMBDA_RESPONSE event), so Response.Validate rejects action lists
// that would trigger that path.
package sma
