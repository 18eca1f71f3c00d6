package bridge

import (
	"fmt"
	"time"

	"github.com/haivivi/voicebridge/pkg/audio/g711"
	"github.com/haivivi/voicebridge/pkg/audio/resample"
)

// Encoding names a wire audio encoding.
type Encoding string

const (
	EncodingMulaw Encoding = "mulaw" // G.711 mu-law, one byte per sample
	EncodingPCM16 Encoding = "pcm16" // little-endian signed 16-bit PCM
)

// FrameInterval is the pacing period for downstream audio.
const FrameInterval = 20 * time.Millisecond

// Format describes one side's audio stream.
type Format struct {
	Encoding     Encoding
	SampleRateHz int
}

// Validate rejects formats the bridge cannot carry. Mu-law is only
// defined for narrowband telephony rates.
func (f Format) Validate() error {
	switch f.Encoding {
	case EncodingMulaw:
		if f.SampleRateHz != 8000 {
			return fmt.Errorf("bridge: mulaw requires 8000 Hz, got %d", f.SampleRateHz)
		}
	case EncodingPCM16:
		if f.SampleRateHz <= 0 {
			return fmt.Errorf("bridge: invalid sample rate %d", f.SampleRateHz)
		}
	default:
		return fmt.Errorf("bridge: unknown encoding %q", f.Encoding)
	}
	return nil
}

func (f Format) bytesPerSample() int {
	if f.Encoding == EncodingPCM16 {
		return 2
	}
	return 1
}

// FrameBytes is the byte length of one FrameInterval of audio.
func (f Format) FrameBytes() int {
	samples := f.SampleRateHz * int(FrameInterval/time.Millisecond) / 1000
	return samples * f.bytesPerSample()
}

// SilenceByte is the fill value for padded frames: mu-law encodes zero
// amplitude as 0xFF, PCM16 as zero bytes.
func (f Format) SilenceByte() byte {
	if f.Encoding == EncodingMulaw {
		return g711.Silence
	}
	return 0x00
}

// Duration is the playback time of n bytes in this format.
func (f Format) Duration(n int) time.Duration {
	samples := n / f.bytesPerSample()
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRateHz)
}

// transcode converts audio bytes from src to dst. Equal formats pass
// through with a copy so callers may reuse their buffers.
func transcode(data []byte, src, dst Format) []byte {
	if src == dst {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}

	var samples []float64
	switch src.Encoding {
	case EncodingMulaw:
		samples = resample.Int16ToFloat(g711.Decode(data))
	default:
		samples = resample.PCM16ToFloat(data)
	}

	samples = resample.Linear(samples, src.SampleRateHz, dst.SampleRateHz)

	switch dst.Encoding {
	case EncodingMulaw:
		return g711.Encode(resample.FloatToInt16(samples))
	default:
		return resample.FloatToPCM16(samples)
	}
}
