// Package netwatch turns the local network-presence signal into
// "online"/"offline" notifications.
//
// Go has no portable push notification for link changes, so the [Watcher]
// samples the signal at a short interval and emits an [Event] only when the
// sampled value flips. The first sample establishes the baseline and is not
// emitted.
package netwatch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the local signal is sampled.
const DefaultInterval = 2 * time.Second

// Signal is the local network-presence signal being watched.
type Signal interface {
	Present() bool
}

// Event is a transition of the local signal.
type Event struct {
	Online bool
	At     time.Time
}

// Name returns "online" or "offline".
func (e Event) Name() string {
	if e.Online {
		return "online"
	}
	return "offline"
}

// Watcher samples a [Signal] and emits transitions.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Watcher struct {
	signal   Signal
	interval time.Duration
	events   chan Event
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewWatcher creates a [Watcher]. A non-positive interval uses
// [DefaultInterval].
func NewWatcher(signal Signal, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		signal:   signal,
		interval: interval,
		events:   make(chan Event, 1),
		logger:   logger,
	}
}

// Events returns the transition channel. It is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins sampling in a background goroutine. Start is idempotent; if
// Stop was called first, Start is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	w.started = true
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		defer w.closeOnce.Do(func() { close(w.events) })

		last := w.signal.Present()
		w.logger.Debug("local network signal baseline", "present", last)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				present := w.signal.Present()
				if present == last {
					continue
				}
				last = present
				ev := Event{Online: present, At: now}
				w.logger.Info("local network signal changed", "event", ev.Name())
				select {
				case w.events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

// Stop halts sampling and waits for the goroutine to exit. Stop is
// idempotent and safe to call before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		if w.cancel != nil {
			w.cancel()
		}
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.closeOnce.Do(func() { close(w.events) })
}
