package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/internetpulse"
)

func main() {
	// start flaky probe target (see mock_server.go)
	go StartFlakyTarget(":9999")
	time.Sleep(100 * time.Millisecond)

	pulse, err := internetpulse.New(
		internetpulse.WithProbeURL("http://localhost:9999/generate_204"),
		internetpulse.WithProbeTimeout(2*time.Second),
		internetpulse.WithPort(8080),
		internetpulse.WithTitle("Internet Pulse Demo"),
		internetpulse.WithSound(internetpulse.SoundBell),
		internetpulse.WithAutoStart(true),
		internetpulse.WithCheckCallback(func(r internetpulse.CheckResult) {
			fmt.Printf("  %s  %-12s trigger=%-8s latency=%s\n",
				r.CheckedAt.Format(time.TimeOnly), r.Status.Label(), r.Trigger, r.Latency.Round(time.Millisecond))
		}),
		internetpulse.WithStateCallback(func(s internetpulse.Snapshot) {
			if s.HasSoundedSinceEnable {
				fmt.Println("  ♪ reconnect chime played")
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create internet pulse", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Internet Pulse Demo                                 ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   The probe target on :9999 drops connections for     ║")
	fmt.Println("  ║   10-25s every 20-60s. Checks run every 10s.          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pulse.Start(ctx); err != nil {
		slog.Error("internet pulse error", "error", err)
		os.Exit(1)
	}
}
