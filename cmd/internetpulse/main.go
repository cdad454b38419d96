// Package main is the entry point for the internetpulse CLI.
//
// Internet Pulse can be used as a library (SDK) or as a standalone binary
// with optional YAML configuration. This CLI provides the standalone binary.
//
// Usage:
//
//	internetpulse serve                   # Web widget on :8080
//	internetpulse watch                   # Terminal indicator
//	internetpulse tray                    # System tray indicator
//	internetpulse init                    # Write a config file
//	internetpulse validate -c config.yaml # Validate configuration
//	internetpulse version                 # Show version info
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "internetpulse",
	Short: "A tiny internet connectivity indicator",
	Long: `Internet Pulse tells you whether your internet connection is up.

While checking is on it probes a well-known URL every 10 seconds and shows
Connected or Disconnected. When the connection comes back it plays a short
chime, once per Start Checking.

Quick start:
  1. Run: internetpulse serve
  2. Open http://localhost:8080 in your browser
  3. Click "Start Checking"

Settings can come from a YAML file (internetpulse init writes one), from
INTERNETPULSE_* environment variables, or from flags, in increasing order
of precedence.`,
	SilenceUsage: true,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this internetpulse binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "internetpulse %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}

// parseLevel maps a --log-level value to a slog level.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q (expected debug, info, warn, or error)", s)
	}
	return level, nil
}

// newLogger creates a JSON logger for CLI use, honouring --log-level.
func newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := parseLevel(raw)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})), nil
}
