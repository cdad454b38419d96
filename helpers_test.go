package internetpulse

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/internetpulse/internal/monitor"
	"github.com/jpalmerr/internetpulse/internal/tone"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withInterval(d time.Duration) Option {
	return func(cfg *pulseConfig) error {
		cfg.interval = d
		return nil
	}
}

func withLocal(l monitor.LocalSignal) Option {
	return func(cfg *pulseConfig) error {
		cfg.local = l
		return nil
	}
}

func withOpener(o tone.Opener) Option {
	return func(cfg *pulseConfig) error {
		cfg.opener = o
		return nil
	}
}

type switchLocal struct {
	present atomic.Bool
}

func newSwitchLocal(present bool) *switchLocal {
	l := &switchLocal{}
	l.present.Store(present)
	return l
}

func (s *switchLocal) Present() bool { return s.present.Load() }

type countingOutput struct {
	mu    sync.Mutex
	plays int
}

func (c *countingOutput) Play(tone.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
	return nil
}

func (c *countingOutput) Close() error { return nil }

func (c *countingOutput) Plays() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

func okServer(t *testing.T) *httptest.Server {
	t.Helper()
	return probeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func probeServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

// testOptions returns options for a headless, silent Pulse probing ts with
// a fast schedule and a local signal that is always present.
func testOptions(ts *httptest.Server, extra ...Option) []Option {
	opts := []Option{
		WithProbeURL(ts.URL),
		WithHeadless(true),
		WithSound(SoundOff),
		WithLogger(testLogger()),
		WithWatchInterval(time.Hour),
		withInterval(50 * time.Millisecond),
		withLocal(newSwitchLocal(true)),
	}
	return append(opts, extra...)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// startPulse runs p.Start in the background and returns a stop function
// that cancels it and waits for it to return.
func startPulse(t *testing.T, p *Pulse) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	waitFor(t, "pulse running", p.running.Load)

	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Start() error = %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Start() did not return after cancel")
		}
	}
}
