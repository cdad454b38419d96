package store

import "time"

// Snapshot is the render contract of the monitor at one point in time.
type Snapshot struct {
	// CheckingEnabled reports whether periodic polling is active.
	CheckingEnabled bool `json:"checking_enabled"`

	// Status is "connected" or "disconnected".
	Status string `json:"status"`

	// LastCheckedAt is the completion time of the most recent probe.
	// nil until the first probe completes.
	LastCheckedAt *time.Time `json:"last_checked_at"`

	// HasSoundedSinceEnable reports whether the reconnect tone has played
	// in the current enable cycle.
	HasSoundedSinceEnable bool `json:"has_sounded_since_enable"`

	// IntervalSeconds is the fixed poll period.
	IntervalSeconds int `json:"interval_seconds"`
}

// Check is one completed probe.
type Check struct {
	ID string `json:"id"`

	// Trigger is what caused the probe: "enable", "schedule" or "signal".
	Trigger string `json:"trigger"`

	// Status is the classification the probe produced.
	Status string `json:"status"`

	// LocalAbsent is true when no remote request was made because the
	// local network signal was absent.
	LocalAbsent bool `json:"local_absent"`

	LatencyMs int64     `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at"`

	// Error holds the failure message. nil on success.
	Error *string `json:"error"`

	// Sounded is true when this probe played the reconnect tone.
	Sounded bool `json:"sounded"`
}

// EventType discriminates [Event] payloads.
type EventType string

const (
	// EventStatus carries a new [Snapshot].
	EventStatus EventType = "status"

	// EventCheck carries a completed [Check].
	EventCheck EventType = "check"

	// EventTone signals that the reconnect tone should play.
	EventTone EventType = "tone"
)

// Event is a single pub/sub message.
type Event struct {
	Type     EventType `json:"type"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Check    *Check    `json:"check,omitempty"`
}

// Store defines the interface for storing and subscribing to state changes.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// SetSnapshot replaces the latest snapshot and publishes an
	// [EventStatus].
	SetSnapshot(s Snapshot)

	// Snapshot returns the latest snapshot.
	Snapshot() Snapshot

	// AddCheck appends a check to the history ring and publishes an
	// [EventCheck], followed by an [EventTone] when the check sounded.
	AddCheck(c Check)

	// History returns up to limit checks, newest first. limit <= 0 returns
	// everything retained.
	History(limit int) []Check

	// Subscribe returns a channel that receives events.
	// The returned channel has a buffer; slow consumers may miss events.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Event

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Event)
}
