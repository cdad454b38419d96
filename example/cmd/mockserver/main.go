// Standalone flaky probe target for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/internetpulse watch --start --probe-url http://localhost:9999/generate_204
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
)

func main() {
	addr := flag.String("addr", ":9999", "listen address")
	flag.Parse()

	var down atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/generate_204", func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	// flip reachability by hand: curl -X POST localhost:9999/outage
	mux.HandleFunc("/outage", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		now := !down.Load()
		down.Store(now)
		slog.Info("outage toggled", "down", now)
		fmt.Fprintf(w, "down=%t\n", now)
	})

	fmt.Printf("Flaky probe target starting on %s\n", *addr)
	fmt.Println("POST /outage to drop or restore connections")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	if err := http.ListenAndServe(*addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
