package bridge

import (
	"sync"
	"time"
)

// DefaultGateCushion is added past the computed playback end so trailing
// echo from the caller's device is still suppressed.
const DefaultGateCushion = 100 * time.Millisecond

// echoGate tracks when upstream caller audio may flow again. It extends
// monotonically: overlapping playback never shortens the window.
type echoGate struct {
	mu      sync.Mutex
	until   time.Time
	cushion time.Duration
	now     func() time.Time
}

func newEchoGate(cushion time.Duration, now func() time.Time) *echoGate {
	if cushion <= 0 {
		cushion = DefaultGateCushion
	}
	if now == nil {
		now = time.Now
	}
	return &echoGate{cushion: cushion, now: now}
}

// hold closes the gate until the currently buffered playback drains,
// plus the cushion. buffered is the total unplayed audio, so calling
// hold after every push keeps the window aligned with reality. The
// window only ever moves forward.
func (g *echoGate) hold(buffered time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	until := g.now().Add(buffered + g.cushion)
	if until.After(g.until) {
		g.until = until
	}
}

// open reports whether upstream audio may pass.
func (g *echoGate) open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.now().Before(g.until)
}
