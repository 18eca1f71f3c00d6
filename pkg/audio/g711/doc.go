// Package g711 implements the 8-bit logarithmic mu-law telephony codec.
//
// Mu-law companding maps 16-bit linear PCM samples onto 8 bits using a
// sign bit, a 3-bit segment exponent, and a 4-bit mantissa. Quantization
// makes the codec lossy, but decode and encode are exact mutual inverses
// at the byte level: re-encoding a decoded sample always reproduces the
// original byte.
//
// All functions are pure and total. There is no streaming state; callers
// frame and validate buffers before handing them to this package.
package g711
