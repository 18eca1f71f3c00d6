// Package resample provides linear-interpolation sample rate conversion and
// PCM16 sample conversions for the real-time audio path.
//
// The conversions here trade fidelity for determinism: output lengths are
// exact (floor(n*dst/src)), allocation is bounded by the input size, and
// equal-rate calls degrade to a copy. That keeps the hot path predictable
// at telephony rates (8kHz) against AI endpoint rates (16kHz/24kHz).
package resample

import "encoding/binary"

// Linear resamples mono float samples from srcHz to dstHz using linear
// interpolation. The output length is floor(len(samples)*dstHz/srcHz).
// Equal rates return a copy of the input.
func Linear(samples []float64, srcHz, dstHz int) []float64 {
	if srcHz == dstHz {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}
	outLen := len(samples) * dstHz / srcHz
	out := make([]float64, outLen)
	if outLen == 0 || len(samples) == 0 {
		return out
	}
	step := float64(srcHz) / float64(dstHz)
	last := len(samples) - 1
	for i := range out {
		pos := float64(i) * step
		i0 := int(pos)
		if i0 >= last {
			out[i] = samples[last]
			continue
		}
		frac := pos - float64(i0)
		out[i] = samples[i0] + frac*(samples[i0+1]-samples[i0])
	}
	return out
}

// PCM16ToFloat converts little-endian 16-bit PCM bytes to float samples in
// [-1, 1). The buffer length must be even; an odd trailing byte is a caller
// contract violation and is dropped.
func PCM16ToFloat(b []byte) []float64 {
	n := len(b) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(b[i*2:]))
		out[i] = float64(s) / 32768.0
	}
	return out
}

// FloatToPCM16 converts float samples to little-endian 16-bit PCM bytes.
// Out-of-range inputs are clamped to [-1, 1], never wrapped.
func FloatToPCM16(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		s := int16(f * 32767.0)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Int16ToFloat converts decoded codec samples to float in [-1, 1).
func Int16ToFloat(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768.0
	}
	return out
}

// FloatToInt16 converts float samples to int16 with clamping.
func FloatToInt16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, f := range samples {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		out[i] = int16(f * 32767.0)
	}
	return out
}

// Downmix averages interleaved multi-channel samples into mono. A channel
// count below 2 returns the input unchanged.
func Downmix(samples []float64, channels int) []float64 {
	if channels < 2 {
		return samples
	}
	n := len(samples) / channels
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}
