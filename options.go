package internetpulse

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpalmerr/internetpulse/internal/monitor"
	"github.com/jpalmerr/internetpulse/internal/tone"
)

// pulseConfig holds mutable state during Pulse construction.
type pulseConfig struct {
	title          string
	probeURL       string
	probeMethod    string
	probeTimeout   time.Duration
	port           int
	headless       bool
	autoStart      bool
	sound          SoundMode
	notify         bool
	historySize    int
	watchInterval  time.Duration
	logger         *slog.Logger
	checkCallbacks []func(CheckResult)
	stateCallbacks []func(Snapshot)

	// overridden in tests
	interval time.Duration
	local    monitor.LocalSignal
	opener   tone.Opener
}

// Option is a function that configures a [Pulse] instance during
// construction. Options return an error if validation fails.
type Option func(*pulseConfig) error

// WithProbeURL sets the URL whose reachability defines "connected".
//
// Only whether the request completes matters; the response status and body
// are ignored. Defaults to https://www.google.com.
//
// Returns an error unless the URL is absolute http or https.
func WithProbeURL(raw string) Option {
	return func(cfg *pulseConfig) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid probe URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("probe URL must use http or https, got %q", raw)
		}
		if u.Host == "" {
			return fmt.Errorf("probe URL must include a host, got %q", raw)
		}
		cfg.probeURL = raw
		return nil
	}
}

// WithProbeMethod sets the HTTP method used for probes: HEAD (default) or
// GET.
func WithProbeMethod(method string) Option {
	return func(cfg *pulseConfig) error {
		m := strings.ToUpper(method)
		if m != http.MethodHead && m != http.MethodGet {
			return fmt.Errorf("probe method must be HEAD or GET, got %q", method)
		}
		cfg.probeMethod = m
		return nil
	}
}

// WithProbeTimeout bounds each probe request. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithProbeTimeout(d time.Duration) Option {
	return func(cfg *pulseConfig) error {
		if d <= 0 {
			return errors.New("probe timeout must be positive")
		}
		cfg.probeTimeout = d
		return nil
	}
}

// WithPort sets the HTTP port for the web widget. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *pulseConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the widget title. Defaults to "Internet Pulse".
func WithTitle(title string) Option {
	return func(cfg *pulseConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *pulseConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSound selects the local tone output. Defaults to [SoundBeep].
func WithSound(mode SoundMode) Option {
	return func(cfg *pulseConfig) error {
		m, err := ParseSoundMode(string(mode))
		if err != nil {
			return err
		}
		cfg.sound = m
		return nil
	}
}

// WithNotifications adds a desktop notification to the [SoundBeep] tone.
func WithNotifications(enabled bool) Option {
	return func(cfg *pulseConfig) error {
		cfg.notify = enabled
		return nil
	}
}

// WithAutoStart enables checking as soon as [Pulse.Start] runs, as if the
// user had toggled it on.
func WithAutoStart(enabled bool) Option {
	return func(cfg *pulseConfig) error {
		cfg.autoStart = enabled
		return nil
	}
}

// WithHeadless disables the HTTP server. Used by the terminal and tray
// front ends.
func WithHeadless(headless bool) Option {
	return func(cfg *pulseConfig) error {
		cfg.headless = headless
		return nil
	}
}

// WithHistorySize sets how many recent checks are retained in memory.
// Defaults to 100.
//
// Returns an error if n is zero or negative.
func WithHistorySize(n int) Option {
	return func(cfg *pulseConfig) error {
		if n <= 0 {
			return errors.New("history size must be positive")
		}
		cfg.historySize = n
		return nil
	}
}

// WithWatchInterval sets how often the local network signal is sampled for
// online/offline transitions. Defaults to 2 seconds.
//
// Returns an error if the duration is zero or negative.
func WithWatchInterval(d time.Duration) Option {
	return func(cfg *pulseConfig) error {
		if d <= 0 {
			return errors.New("watch interval must be positive")
		}
		cfg.watchInterval = d
		return nil
	}
}

// WithCheckCallback registers a function called after every completed
// probe, once its result has been recorded.
//
// Callbacks run in order on a dedicated goroutine, after the result is
// visible through [Pulse.History], and may call back into the [Pulse]
// (including [Pulse.Toggle]). A slow callback delays later callbacks but
// not probing. Callbacks queued before shutdown still run before
// [Pulse.Start] returns. Panics are recovered and logged with a correlation
// id. Nil callbacks are ignored.
func WithCheckCallback(cb func(CheckResult)) Option {
	return func(cfg *pulseConfig) error {
		if cb != nil {
			cfg.checkCallbacks = append(cfg.checkCallbacks, cb)
		}
		return nil
	}
}

// WithStateCallback registers a function called after every state change.
// Same restrictions as [WithCheckCallback].
func WithStateCallback(cb func(Snapshot)) Option {
	return func(cfg *pulseConfig) error {
		if cb != nil {
			cfg.stateCallbacks = append(cfg.stateCallbacks, cb)
		}
		return nil
	}
}
