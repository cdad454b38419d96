package main

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newRunCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return cmd
}

func TestLoadSettings_Defaults(t *testing.T) {
	cfg, err := loadSettings(newRunCmd(t))
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.AutoStart {
		t.Error("AutoStart should default to false")
	}
}

func TestLoadSettings_Precedence(t *testing.T) {
	path := writeConfig(t, `
title: From File
port: 9000
sound: bell
`)
	t.Setenv("INTERNETPULSE_PORT", "9100")
	t.Setenv("INTERNETPULSE_PROBE_URL", "https://env.example.com")
	t.Setenv("INTERNETPULSE_PROBE_TIMEOUT", "4s")

	cfg, err := loadSettings(newRunCmd(t, "-c", path, "--port", "9200", "--start"))
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	if cfg.Title != "From File" {
		t.Errorf("Title = %q, want file value", cfg.Title)
	}
	if cfg.Port != 9200 {
		t.Errorf("Port = %d, want flag value 9200", cfg.Port)
	}
	if cfg.Probe.URL != "https://env.example.com" {
		t.Errorf("Probe.URL = %q, want env value", cfg.Probe.URL)
	}
	if cfg.Probe.Timeout.Duration() != 4*time.Second {
		t.Errorf("Probe.Timeout = %v, want 4s", cfg.Probe.Timeout.Duration())
	}
	if cfg.Sound != "bell" {
		t.Errorf("Sound = %q, want file value", cfg.Sound)
	}
	if !cfg.AutoStart {
		t.Error("AutoStart should be set by --start")
	}
}

func TestLoadSettings_InvalidOverride(t *testing.T) {
	t.Setenv("INTERNETPULSE_SOUND", "trumpet")

	_, err := loadSettings(newRunCmd(t))
	if err == nil {
		t.Fatal("loadSettings() expected error for invalid sound")
	}
	if !strings.Contains(err.Error(), "sound") {
		t.Errorf("error = %v, want field name", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
