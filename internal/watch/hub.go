// Package watch keeps one change-notification stream per resource kind
// alive and funnels the throttled events into a single channel.
package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Taishi66/kdeck/internal/domain"
	"github.com/Taishi66/kdeck/internal/logging"
)

var errStreamClosed = errors.New("watch stream closed")

// Options tunes a Hub.
type Options struct {
	Throttle time.Duration
	Backoff  time.Duration
}

// Hub owns the per-kind watch tasks. Restart cancels every task before
// spawning replacements, so events from an old connection never leak into
// a new one.
type Hub struct {
	src      domain.Watcher
	kinds    []domain.Kind
	backoff  time.Duration
	throttle *Throttle

	events chan domain.WatchEvent

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub creates a hub watching kinds. Call Start to open the streams.
func NewHub(src domain.Watcher, kinds []domain.Kind, opts Options) *Hub {
	return &Hub{
		src:      src,
		kinds:    kinds,
		backoff:  opts.Backoff,
		throttle: NewThrottle(opts.Throttle),
		events:   make(chan domain.WatchEvent, 64),
	}
}

// Events delivers accepted notifications. The channel lives as long as the
// hub and survives restarts.
func (h *Hub) Events() <-chan domain.WatchEvent {
	return h.events
}

// Start spawns one task per kind. It is a no-op while tasks are running.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}
	h.spawnLocked()
}

// Restart aborts every task, waits for them, resets the throttle table,
// drops pending events and spawns fresh tasks.
func (h *Hub) Restart() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	h.throttle.Reset()
	h.drain()
	h.spawnLocked()
	logging.Info("watch", "restarted %d streams", len(h.kinds))
}

// Stop aborts every task and waits for them to exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

func (h *Hub) spawnLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	for _, kind := range h.kinds {
		h.wg.Add(1)
		go h.run(ctx, kind)
	}
}

func (h *Hub) stopLocked() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	h.wg.Wait()
	h.cancel = nil
}

func (h *Hub) drain() {
	for {
		select {
		case <-h.events:
		default:
			return
		}
	}
}

// run keeps kind's stream open, pausing between reconnects. Unsupported
// kinds end the task.
func (h *Hub) run(ctx context.Context, kind domain.Kind) {
	defer h.wg.Done()

	op := func() error {
		ch, err := h.src.Watch(ctx, kind)
		if err != nil {
			if domain.IsUnsupported(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if ch == nil {
			return backoff.Permanent(domain.Unsupported(kind, "watch"))
		}
		h.consume(ctx, kind, ch)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return errStreamClosed
	}
	notify := func(err error, wait time.Duration) {
		logging.Debug("watch", "%s: %v, reconnecting in %s", kind, err, wait)
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(h.backoff), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil && ctx.Err() == nil {
		logging.Debug("watch", "%s: stream stopped: %v", kind, err)
	}
}

func (h *Hub) consume(ctx context.Context, kind domain.Kind, ch <-chan domain.WatchEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if evt.Type == domain.EventError {
				logging.Warn("watch", nil, "%s: error event", kind)
				continue
			}
			if !h.throttle.Allow(kind) {
				continue
			}
			evt.Kind = kind
			select {
			case h.events <- evt:
			case <-ctx.Done():
				return
			}
		}
	}
}

// ShouldRefresh reports whether an accepted event warrants a refresh while
// active is on screen. Namespace changes affect every scoped view.
func ShouldRefresh(evt domain.WatchEvent, active domain.Kind) bool {
	return evt.Kind == active || evt.Kind == domain.KindNamespaces
}
