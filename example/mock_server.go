package main

import (
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// flakyTarget answers probes with 204 but drops every connection while an
// outage is in progress. Outages start every 20-60 seconds and last 10-25
// seconds.
type flakyTarget struct {
	mu       sync.Mutex
	down     bool
	toggleAt time.Time
}

func newFlakyTarget() *flakyTarget {
	return &flakyTarget{toggleAt: time.Now().Add(nextUptime())}
}

func nextUptime() time.Duration {
	return time.Duration(20+rand.Intn(41)) * time.Second
}

func nextOutage() time.Duration {
	return time.Duration(10+rand.Intn(16)) * time.Second
}

// isDown advances the outage schedule and reports whether the target is
// currently unreachable.
func (f *flakyTarget) isDown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if time.Now().After(f.toggleAt) {
		f.down = !f.down
		if f.down {
			f.toggleAt = time.Now().Add(nextOutage())
			slog.Info("outage started", "until", f.toggleAt.Format(time.TimeOnly))
		} else {
			f.toggleAt = time.Now().Add(nextUptime())
			slog.Info("outage over", "next_outage", f.toggleAt.Format(time.TimeOnly))
		}
	}
	return f.down
}

func (f *flakyTarget) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.isDown() {
		// drop the connection so the probe sees a transport error
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	// simulate small latency variance
	time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)
	w.WriteHeader(http.StatusNoContent)
}

// StartFlakyTarget serves a flaky probe target on addr.
// Call this in a goroutine before starting Internet Pulse.
func StartFlakyTarget(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/generate_204", newFlakyTarget())

	slog.Info("flaky target starting", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("flaky target error", "error", err)
	}
}
