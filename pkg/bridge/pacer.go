package bridge

import (
	"sync"
	"time"
)

// maxBuffered caps the jitter buffer. Audio past the cap is dropped at
// push time; a model that streams minutes ahead of playback would
// otherwise grow the buffer without bound.
const maxBuffered = 30 * time.Second

// pacer buffers downstream audio and cuts it into fixed frames. An
// underrun frame is padded with the format's silence byte so the
// telephony side always receives exactly one frame per tick.
type pacer struct {
	mu      sync.Mutex
	buf     []byte
	format  Format
	dropped int
}

func newPacer(f Format) *pacer {
	return &pacer{format: f}
}

// push appends audio, dropping whatever exceeds the buffer cap.
func (p *pacer) push(audio []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	capBytes := p.format.SampleRateHz * p.format.bytesPerSample() * int(maxBuffered/time.Second)
	room := capBytes - len(p.buf)
	if room <= 0 {
		p.dropped += len(audio)
		return
	}
	if len(audio) > room {
		p.dropped += len(audio) - room
		audio = audio[:room]
	}
	p.buf = append(p.buf, audio...)
}

// nextFrame pops one frame worth of audio. Short reads are padded to the
// full frame length with silence.
func (p *pacer) nextFrame() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.format.FrameBytes()
	frame := make([]byte, n)
	fill := p.format.SilenceByte()
	got := copy(frame, p.buf)
	for i := got; i < n; i++ {
		frame[i] = fill
	}
	p.buf = p.buf[got:]
	if len(p.buf) == 0 {
		p.buf = nil
	}
	return frame
}

// buffered is the playback duration of unconsumed audio.
func (p *pacer) buffered() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.format.Duration(len(p.buf))
}

// droppedBytes reports how much audio was discarded to backpressure.
func (p *pacer) droppedBytes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
