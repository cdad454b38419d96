package internetpulse

import (
	"time"

	"github.com/jpalmerr/internetpulse/internal/tone"
)

// Status is the connectivity classification shown to the user.
type Status string

const (
	// StatusConnected means the most recent probe reached the probe URL.
	StatusConnected Status = "connected"

	// StatusDisconnected means the most recent probe failed, or the local
	// network signal was absent.
	StatusDisconnected Status = "disconnected"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Label returns the display text: "Connected" or "Disconnected".
func (s Status) Label() string {
	if s == StatusConnected {
		return "Connected"
	}
	return "Disconnected"
}

// Message returns the one-line description shown under the label.
func (s Status) Message() string {
	if s == StatusConnected {
		return "Your internet is flowing smoothly!"
	}
	return "Oops! Your internet seems to be on a coffee break."
}

func statusOf(online bool) Status {
	if online {
		return StatusConnected
	}
	return StatusDisconnected
}

// SoundMode selects how the reconnect tone is played.
type SoundMode string

const (
	// SoundBeep plays the tone on the host speaker.
	SoundBeep SoundMode = SoundMode(tone.ModeBeep)

	// SoundBell writes a terminal bell to stderr.
	SoundBell SoundMode = SoundMode(tone.ModeBell)

	// SoundOff disables the tone. The web widget still plays it in the
	// browser.
	SoundOff SoundMode = SoundMode(tone.ModeOff)
)

// ParseSoundMode parses "beep", "bell" or "off". Empty means [SoundBeep].
func ParseSoundMode(s string) (SoundMode, error) {
	m, err := tone.ParseMode(s)
	if err != nil {
		return "", err
	}
	return SoundMode(m), nil
}

// Snapshot is the render contract: everything a surface needs to draw the
// indicator.
type Snapshot struct {
	// CheckingEnabled reports whether periodic polling is active.
	CheckingEnabled bool

	// Status is the last known connectivity classification.
	Status Status

	// LastCheckedAt is when the most recent probe completed. Zero until the
	// first probe completes.
	LastCheckedAt time.Time

	// HasSoundedSinceEnable reports whether the reconnect tone has already
	// played in the current enable cycle.
	HasSoundedSinceEnable bool
}

// Online reports whether Status is [StatusConnected].
func (s Snapshot) Online() bool {
	return s.Status == StatusConnected
}

// CheckResult holds the outcome of a single probe.
type CheckResult struct {
	// ID uniquely identifies the check.
	ID string

	// Trigger is what caused the probe: "enable", "schedule" or "signal".
	Trigger string

	Status Status

	// LocalAbsent is true when the local network signal was absent and no
	// remote request was made.
	LocalAbsent bool

	// Latency is the time taken by the remote request. Zero when
	// LocalAbsent.
	Latency time.Duration

	CheckedAt time.Time

	// Error is the probe failure, nil on success.
	Error error

	// Sounded is true when this check played the reconnect tone.
	Sounded bool
}
