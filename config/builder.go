package config

import (
	"log/slog"

	"github.com/jpalmerr/internetpulse"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The logger, if non-nil, is passed through with [internetpulse.WithLogger].
// Callers append their own options (callbacks, headless mode) after these.
func BuildOptions(cfg *Config, logger *slog.Logger) []internetpulse.Option {
	opts := []internetpulse.Option{
		internetpulse.WithTitle(cfg.Title),
		internetpulse.WithPort(cfg.Port),
		internetpulse.WithProbeURL(cfg.Probe.URL),
		internetpulse.WithProbeMethod(cfg.Probe.Method),
		internetpulse.WithProbeTimeout(cfg.Probe.Timeout.Duration()),
		internetpulse.WithWatchInterval(cfg.WatchInterval.Duration()),
		internetpulse.WithSound(internetpulse.SoundMode(cfg.Sound)),
		internetpulse.WithNotifications(cfg.Notify),
		internetpulse.WithAutoStart(cfg.AutoStart),
		internetpulse.WithHistorySize(cfg.HistorySize),
	}

	if logger != nil {
		opts = append(opts, internetpulse.WithLogger(logger))
	}

	return opts
}
