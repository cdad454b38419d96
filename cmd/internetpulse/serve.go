package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// serveCmd starts the web widget.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web widget",
	Long: `Serve the Internet Pulse web widget.

The server will:
  - Load settings from the optional YAML file, environment and flags
  - Serve the widget UI and its JSON/SSE/WebSocket API on the configured port
  - Probe every 10 seconds while checking is on

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  internetpulse serve
  internetpulse serve -c internetpulse.yaml --start
  INTERNETPULSE_PORT=9000 internetpulse serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addRunFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger.Info("starting server",
		"port", cfg.Port,
		"probe_url", cfg.Probe.URL,
		"sound", cfg.Sound,
		"auto_start", cfg.AutoStart,
	)

	p, err := newPulse(cfg, logger)
	if err != nil {
		return err
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start server - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- p.Start(ctx)
	}()

	// wait for server to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
