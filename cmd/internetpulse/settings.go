package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/internetpulse"
	"github.com/jpalmerr/internetpulse/config"
)

// envPrefix namespaces environment overrides, e.g. INTERNETPULSE_PORT.
const envPrefix = "INTERNETPULSE"

const shutdownTimeout = 10 * time.Second

// overrideKeys maps config keys to the flag that overrides them. Keys with
// an empty flag name can only be overridden from the environment.
var overrideKeys = map[string]string{
	"title":          "title",
	"port":           "port",
	"probe.url":      "probe-url",
	"probe.method":   "",
	"probe.timeout":  "",
	"watch_interval": "",
	"sound":          "sound",
	"notify":         "notify",
	"auto_start":     "start",
	"history_size":   "",
}

// addRunFlags registers the flags shared by serve, watch and tray.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file (optional)")
	cmd.Flags().IntP("port", "p", 0, "HTTP port for the web widget")
	cmd.Flags().String("title", "", "widget title")
	cmd.Flags().String("probe-url", "", "URL probed for reachability")
	cmd.Flags().String("sound", "", "reconnect tone: beep, bell, or off")
	cmd.Flags().Bool("notify", false, "show a desktop notification with the tone")
	cmd.Flags().Bool("start", false, "start checking immediately")
}

// loadSettings reads the optional config file, then applies environment and
// flag overrides in that order, and validates the result.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range overrideKeys {
		if flag == "" {
			continue
		}
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
			}
		}
	}

	applyOverrides(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies every key set in v onto cfg.
func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet("title") {
		cfg.Title = v.GetString("title")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetInt("port")
	}
	if v.IsSet("probe.url") {
		cfg.Probe.URL = v.GetString("probe.url")
	}
	if v.IsSet("probe.method") {
		cfg.Probe.Method = v.GetString("probe.method")
	}
	if v.IsSet("probe.timeout") {
		cfg.Probe.Timeout = config.Duration(v.GetDuration("probe.timeout"))
	}
	if v.IsSet("watch_interval") {
		cfg.WatchInterval = config.Duration(v.GetDuration("watch_interval"))
	}
	if v.IsSet("sound") {
		cfg.Sound = v.GetString("sound")
	}
	if v.IsSet("notify") {
		cfg.Notify = v.GetBool("notify")
	}
	if v.IsSet("auto_start") {
		cfg.AutoStart = v.GetBool("auto_start")
	}
	if v.IsSet("history_size") {
		cfg.HistorySize = v.GetInt("history_size")
	}
}

// newPulse builds a Pulse from settings.
func newPulse(cfg *config.Config, logger *slog.Logger, extra ...internetpulse.Option) (*internetpulse.Pulse, error) {
	opts := append(config.BuildOptions(cfg, logger), extra...)
	p, err := internetpulse.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Internet Pulse: %w", err)
	}
	return p, nil
}

// startInBackground runs p.Start. done is closed when Start returns;
// shutdown cancels Start, waits for it (bounded by shutdownTimeout) and
// returns its error.
func startInBackground(ctx context.Context, p *internetpulse.Pulse, logger *slog.Logger) (done <-chan struct{}, shutdown func() error) {
	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	var startErr error
	go func() {
		defer close(finished)
		startErr = p.Start(ctx)
	}()

	return finished, func() error {
		cancel()
		select {
		case <-finished:
			return startErr
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
