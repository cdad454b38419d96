package netwatch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type flipSignal struct {
	present atomic.Bool
}

func (f *flipSignal) Present() bool { return f.present.Load() }

func TestWatcher_EmitsTransitionsOnly(t *testing.T) {
	sig := &flipSignal{}
	sig.present.Store(true)

	w := NewWatcher(sig, 10*time.Millisecond, testLogger())
	w.Start(context.Background())
	defer w.Stop()

	// steady state: nothing emitted
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v without a transition", ev)
	case <-time.After(50 * time.Millisecond):
	}

	sig.present.Store(false)
	select {
	case ev := <-w.Events():
		if ev.Online || ev.Name() != "offline" {
			t.Errorf("event = %+v, want offline", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no offline event")
	}

	sig.present.Store(true)
	select {
	case ev := <-w.Events():
		if !ev.Online || ev.Name() != "online" {
			t.Errorf("event = %+v, want online", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no online event")
	}
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w := NewWatcher(&flipSignal{}, 10*time.Millisecond, testLogger())
	w.Start(context.Background())
	w.Stop()

	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("expected events channel to be closed after Stop()")
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for events channel to close")
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	w := NewWatcher(&flipSignal{}, time.Second, testLogger())
	w.Stop()
	w.Start(context.Background()) // no-op after Stop
	w.Stop()

	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	w := NewWatcher(&flipSignal{}, 10*time.Millisecond, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	select {
	case _, ok := <-w.Events():
		if ok {
			t.Error("expected closed channel after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel not closed after context cancel")
	}
	w.Stop()
}

func TestWatcher_ConcurrentStartStop(t *testing.T) {
	for i := 0; i < 50; i++ {
		w := NewWatcher(&flipSignal{}, time.Millisecond, testLogger())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			w.Start(context.Background())
		}()
		go func() {
			defer wg.Done()
			w.Stop()
		}()
		wg.Wait()
		w.Stop()
	}
}

func TestNewWatcher_DefaultInterval(t *testing.T) {
	w := NewWatcher(&flipSignal{}, 0, nil)
	if w.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", w.interval, DefaultInterval)
	}
}
