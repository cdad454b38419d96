package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jpalmerr/internetpulse"
)

func TestBuildOptions_Defaults(t *testing.T) {
	p, err := internetpulse.New(BuildOptions(Default(), nil)...)
	if err != nil {
		t.Fatalf("New(BuildOptions(Default())) error = %v", err)
	}

	if p.Title() != "Internet Pulse" {
		t.Errorf("Title() = %q, want %q", p.Title(), "Internet Pulse")
	}
	if p.Port() != 8080 {
		t.Errorf("Port() = %d, want 8080", p.Port())
	}
	if p.ProbeURL() != "https://www.google.com" {
		t.Errorf("ProbeURL() = %q", p.ProbeURL())
	}
	if p.Interval() != internetpulse.CheckInterval {
		t.Errorf("Interval() = %v, want %v", p.Interval(), internetpulse.CheckInterval)
	}
}

func TestBuildOptions_Custom(t *testing.T) {
	cfg := &Config{
		Title: "Office Uplink",
		Port:  9090,
		Probe: ProbeConfig{
			URL:     "https://example.com/generate_204",
			Method:  "GET",
			Timeout: Duration(3 * time.Second),
		},
		WatchInterval: Duration(time.Second),
		Sound:         "off",
		AutoStart:     true,
		HistorySize:   10,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := internetpulse.New(BuildOptions(cfg, logger)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if p.Title() != "Office Uplink" {
		t.Errorf("Title() = %q, want %q", p.Title(), "Office Uplink")
	}
	if p.Port() != 9090 {
		t.Errorf("Port() = %d, want 9090", p.Port())
	}
	if p.ProbeURL() != "https://example.com/generate_204" {
		t.Errorf("ProbeURL() = %q", p.ProbeURL())
	}
}

func TestBuildOptions_InvalidSoundRejected(t *testing.T) {
	cfg := Default()
	cfg.Sound = "trumpet"

	if _, err := internetpulse.New(BuildOptions(cfg, nil)...); err == nil {
		t.Error("New() expected error for unknown sound mode")
	}
}
