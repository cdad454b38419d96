// Package config provides YAML configuration for the internetpulse binary.
//
// Example configuration:
//
//	title: Internet Pulse
//	port: 8080
//	probe:
//	  url: ${PROBE_URL:-https://www.google.com}
//	  method: HEAD
//	  timeout: 5s
//	watch_interval: 2s
//	sound: beep
//	notify: false
//	auto_start: true
//	history_size: 100
//
// The poll interval is fixed at ten seconds and cannot be configured.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/internetpulse/internal/netwatch"
	"github.com/jpalmerr/internetpulse/internal/probe"
	"github.com/jpalmerr/internetpulse/internal/store"
	"github.com/jpalmerr/internetpulse/internal/tone"
)

const (
	defaultPort  = 8080
	defaultTitle = "Internet Pulse"

	minProbeTimeout  = 1 * time.Second
	maxProbeTimeout  = 60 * time.Second
	minWatchInterval = 100 * time.Millisecond
	maxWatchInterval = 1 * time.Minute
	maxHistorySize   = 10000
)

// Config is the root configuration structure.
//
// Use [Load] or [Parse] to create a Config from YAML, or [Default] for the
// built-in defaults.
type Config struct {
	// Title is the widget and window title.
	Title string `yaml:"title"`

	// Port is the HTTP server port for the web widget. Defaults to 8080.
	Port int `yaml:"port"`

	// Probe configures the reachability request.
	Probe ProbeConfig `yaml:"probe"`

	// WatchInterval is how often the local network signal is sampled.
	// Defaults to 2s.
	WatchInterval Duration `yaml:"watch_interval"`

	// Sound is the local tone output: beep, bell or off. Defaults to beep.
	Sound string `yaml:"sound"`

	// Notify adds a desktop notification to the beep.
	Notify bool `yaml:"notify"`

	// AutoStart enables checking on launch.
	AutoStart bool `yaml:"auto_start"`

	// HistorySize is how many recent checks are kept in memory.
	// Defaults to 100.
	HistorySize int `yaml:"history_size"`
}

// ProbeConfig defines the reachability request.
type ProbeConfig struct {
	// URL is the probe target.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Method is HEAD or GET. Defaults to HEAD.
	Method string `yaml:"method"`

	// Timeout bounds each request. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML (un)marshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Probe.URL == "" {
		c.Probe.URL = probe.DefaultURL
	}
	if c.Probe.Method == "" {
		c.Probe.Method = http.MethodHead
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = Duration(probe.DefaultTimeout)
	}
	if c.WatchInterval == 0 {
		c.WatchInterval = Duration(netwatch.DefaultInterval)
	}
	if c.Sound == "" {
		c.Sound = string(tone.ModeBeep)
	}
	if c.HistorySize == 0 {
		c.HistorySize = store.DefaultHistorySize
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Unknown keys are rejected. Environment variables are expanded in
// probe.url. Defaults are applied to every unset field.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "poll_interval") {
			return nil, errors.New("failed to parse YAML: poll_interval is not configurable (checks run every 10s)")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks a Config built in code, such as one assembled by the
// init form. It applies the same rules as [Parse].
func (c *Config) Validate() error {
	return c.expandAndValidate()
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port: must be between 1 and 65535, got %d", c.Port)
	}

	expanded, err := expandEnvVars(c.Probe.URL)
	if err != nil {
		return fmt.Errorf("probe.url: %w", err)
	}
	c.Probe.URL = expanded

	parsedURL, err := url.Parse(c.Probe.URL)
	if err != nil {
		return fmt.Errorf("probe.url: invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("probe.url: url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("probe.url: url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("probe.url: url must include a host")
	}

	c.Probe.Method = strings.ToUpper(c.Probe.Method)
	if c.Probe.Method != http.MethodHead && c.Probe.Method != http.MethodGet {
		return fmt.Errorf("probe.method: must be HEAD or GET, got %q", c.Probe.Method)
	}

	if t := c.Probe.Timeout.Duration(); t < minProbeTimeout || t > maxProbeTimeout {
		return fmt.Errorf("probe.timeout: must be between %s and %s, got %s", minProbeTimeout, maxProbeTimeout, t)
	}

	if w := c.WatchInterval.Duration(); w < minWatchInterval || w > maxWatchInterval {
		return fmt.Errorf("watch_interval: must be between %s and %s, got %s", minWatchInterval, maxWatchInterval, w)
	}

	if _, err := tone.ParseMode(c.Sound); err != nil {
		return fmt.Errorf("sound: %w", err)
	}

	if c.HistorySize < 1 || c.HistorySize > maxHistorySize {
		return fmt.Errorf("history_size: must be between 1 and %d, got %d", maxHistorySize, c.HistorySize)
	}

	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}
