package watch

import (
	"sync"
	"time"

	"github.com/Taishi66/kdeck/internal/domain"
)

// Throttle accepts at most one event per kind per window. The first event
// after a quiet period passes immediately; events inside the window are
// dropped and do not extend it.
type Throttle struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[domain.Kind]time.Time
}

func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{window: window, now: time.Now, last: make(map[domain.Kind]time.Time)}
}

// Allow reports whether an event for kind arriving now is accepted.
func (t *Throttle) Allow(kind domain.Kind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if last, ok := t.last[kind]; ok && now.Sub(last) < t.window {
		return false
	}
	t.last[kind] = now
	return true
}

// Reset forgets every accepted timestamp.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.last = make(map[domain.Kind]time.Time)
	t.mu.Unlock()
}
