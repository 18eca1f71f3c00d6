// Package audio is an umbrella for the call audio sub-packages:
//
//   - g711: G.711 mu-law companding for the telephony leg
//   - resample: sample rate conversion and PCM/float plumbing
//
// Both are pure transforms over in-memory buffers. Framing and pacing
// live in the bridge package, which decides when bytes move.
package audio
