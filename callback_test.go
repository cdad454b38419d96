package internetpulse

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/internetpulse/internal/tone"
)

func TestWithCheckCallback_ReceivesResult(t *testing.T) {
	ts := okServer(t)

	results := make(chan CheckResult, 10)
	p, err := New(testOptions(ts,
		WithAutoStart(true),
		WithCheckCallback(func(r CheckResult) { results <- r }),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)
	defer stop()

	select {
	case r := <-results:
		if r.ID == "" {
			t.Error("ID should be set")
		}
		if r.Trigger != "enable" {
			t.Errorf("Trigger = %q, want enable", r.Trigger)
		}
		if r.Status != StatusConnected {
			t.Errorf("Status = %v, want connected", r.Status)
		}
		if r.Error != nil {
			t.Errorf("Error = %v, want nil", r.Error)
		}
		if r.CheckedAt.IsZero() {
			t.Error("CheckedAt should not be zero")
		}
		if r.Sounded {
			t.Error("first success after start must not sound")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for callback")
	}
}

func TestWithCheckCallback_UnreachableProbe(t *testing.T) {
	ts := okServer(t)
	url := ts.URL
	ts.Close() // connection refused from now on

	results := make(chan CheckResult, 10)
	p, err := New(
		WithProbeURL(url),
		WithHeadless(true),
		WithSound(SoundOff),
		WithLogger(testLogger()),
		WithWatchInterval(time.Hour),
		WithAutoStart(true),
		withInterval(time.Hour),
		withLocal(newSwitchLocal(true)),
		WithCheckCallback(func(r CheckResult) { results <- r }),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)
	defer stop()

	select {
	case r := <-results:
		if r.Status != StatusDisconnected {
			t.Errorf("Status = %v, want disconnected", r.Status)
		}
		if r.Error == nil {
			t.Error("Error should be set for an unreachable probe")
		}
		if r.LocalAbsent {
			t.Error("LocalAbsent should be false")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for callback")
	}

	if p.Snapshot().Online() {
		t.Error("snapshot should be offline")
	}
}

func TestReconnectTone_PlaysOncePerCycle(t *testing.T) {
	ts := okServer(t)
	local := newSwitchLocal(false)
	out := &countingOutput{}

	var sounded atomic.Int32
	p, err := New(testOptions(ts,
		withLocal(local),
		withOpener(func() (tone.Output, error) { return out, nil }),
		WithCheckCallback(func(r CheckResult) {
			if r.Sounded {
				sounded.Add(1)
			}
		}),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)
	defer stop()

	if _, err := p.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	// local signal absent: offline without a remote request
	waitFor(t, "offline", func() bool {
		s := p.Snapshot()
		return !s.LastCheckedAt.IsZero() && !s.Online()
	})
	h := p.History(1)
	if len(h) != 1 || !h[0].LocalAbsent {
		t.Fatalf("History(1) = %+v, want a local-absent check", h)
	}

	local.present.Store(true)
	waitFor(t, "reconnect tone", func() bool { return sounded.Load() == 1 })
	waitFor(t, "tone played", func() bool { return out.Plays() == 1 })

	// several more successful probes, still one tone
	waitFor(t, "more probes", func() bool { return len(p.History(0)) >= 5 })
	if got := sounded.Load(); got != 1 {
		t.Errorf("tone sounded %d times, want 1", got)
	}
	if !p.Snapshot().HasSoundedSinceEnable {
		t.Error("HasSoundedSinceEnable should be true after the tone")
	}

	// disable and re-enable resets the guard
	if _, err := p.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	snap, err := p.Toggle(context.Background())
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if snap.HasSoundedSinceEnable {
		t.Error("re-enable should reset HasSoundedSinceEnable")
	}
}

func TestWithStateCallback_Invoked(t *testing.T) {
	ts := okServer(t)

	var mu sync.Mutex
	var snaps []Snapshot
	p, err := New(testOptions(ts,
		WithStateCallback(func(s Snapshot) {
			mu.Lock()
			snaps = append(snaps, s)
			mu.Unlock()
		}),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)
	defer stop()

	if _, err := p.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	waitFor(t, "state after probe", func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, s := range snaps {
			if !s.LastCheckedAt.IsZero() {
				return true
			}
		}
		return false
	})

	mu.Lock()
	defer mu.Unlock()
	if !snaps[0].CheckingEnabled || !snaps[0].LastCheckedAt.IsZero() {
		t.Errorf("first snapshot = %+v, want enabled with no check yet", snaps[0])
	}
}

func TestCallback_PanicRecovery(t *testing.T) {
	ts := okServer(t)

	var logBuf syncBuffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	var normalCalled atomic.Bool
	p, err := New(testOptions(ts,
		WithLogger(logger),
		WithAutoStart(true),
		WithCheckCallback(func(CheckResult) { panic("intentional test panic") }),
		WithCheckCallback(func(CheckResult) { normalCalled.Store(true) }),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)

	waitFor(t, "callback after panic", normalCalled.Load)
	stop()

	out := logBuf.String()
	if !strings.Contains(out, "callback panicked") || !strings.Contains(out, "correlation_id") {
		t.Errorf("panic should be logged with a correlation id, got: %s", out)
	}
}

// TestCallback_ToggleFromCallback: a check callback that disables checking
// gets its reply instead of blocking the monitor.
func TestCallback_ToggleFromCallback(t *testing.T) {
	ts := okServer(t)

	type toggleOutcome struct {
		snap Snapshot
		err  error
	}
	outcomes := make(chan toggleOutcome, 1)

	var p *Pulse
	var once sync.Once
	p, err := New(testOptions(ts,
		withInterval(time.Hour),
		WithAutoStart(true),
		WithCheckCallback(func(CheckResult) {
			once.Do(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				snap, err := p.Toggle(ctx)
				outcomes <- toggleOutcome{snap: snap, err: err}
			})
		}),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)
	defer stop()

	select {
	case out := <-outcomes:
		if out.err != nil {
			t.Fatalf("Toggle() from callback error = %v", out.err)
		}
		if out.snap.CheckingEnabled {
			t.Error("Toggle() from callback should have disabled checking")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Toggle() from callback never returned")
	}

	if p.Snapshot().CheckingEnabled {
		t.Error("Snapshot() still enabled after callback toggle")
	}
}

func TestCallback_SeesRecordedHistory(t *testing.T) {
	ts := okServer(t)

	seen := make(chan int, 10)
	var p *Pulse
	p, err := New(testOptions(ts,
		withInterval(time.Hour),
		WithAutoStart(true),
		WithCheckCallback(func(r CheckResult) {
			h := p.History(1)
			if len(h) == 1 && h[0].ID == r.ID {
				seen <- 1
				return
			}
			seen <- 0
		}),
	)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)
	defer stop()

	select {
	case ok := <-seen:
		if ok != 1 {
			t.Error("callback ran before its check was recorded")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for callback")
	}
}

func TestSubscribe(t *testing.T) {
	ts := okServer(t)
	p, err := New(testOptions(ts, withInterval(time.Hour))...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)
	defer stop()

	ch, unsubscribe := p.Subscribe()

	if _, err := p.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	select {
	case s := <-ch:
		if !s.CheckingEnabled {
			t.Errorf("first snapshot = %+v, want enabled", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}

	unsubscribe()
	unsubscribe()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after unsubscribe")
		}
	}
}

func TestHistory_NewestFirstAndBounded(t *testing.T) {
	ts := okServer(t)
	p, err := New(testOptions(ts, WithAutoStart(true), WithHistorySize(3))...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startPulse(t, p)

	waitFor(t, "history fills", func() bool { return len(p.History(0)) == 3 })
	time.Sleep(120 * time.Millisecond) // a couple more probes overwrite the ring
	stop()

	h := p.History(0)
	if len(h) != 3 {
		t.Fatalf("History() = %d, want 3", len(h))
	}
	for i := 1; i < len(h); i++ {
		if h[i].CheckedAt.After(h[i-1].CheckedAt) {
			t.Errorf("History not newest first at %d", i)
		}
	}
	if len(p.History(1)) != 1 {
		t.Error("History(1) should return one check")
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writes from the logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
