package store

import (
	"sync"
)

// DefaultHistorySize is the ring capacity used when none is given.
const DefaultHistorySize = 100

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Checks are kept in a fixed-size ring; once full, the oldest entry is
// overwritten. Events are sent non-blocking; if a subscriber's buffer is
// full, the event is dropped for that subscriber.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot Snapshot
	ring     []Check
	next     int
	count    int

	subscribers map[chan Event]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] retaining up to
// historySize checks. A non-positive size uses [DefaultHistorySize].
func NewMemoryStore(historySize int) *MemoryStore {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &MemoryStore{
		snapshot:    Snapshot{Status: "connected"},
		ring:        make([]Check, historySize),
		subscribers: make(map[chan Event]struct{}),
	}
}

// SetSnapshot stores s and notifies all subscribers.
func (m *MemoryStore) SetSnapshot(s Snapshot) {
	m.mu.Lock()
	m.snapshot = s
	m.mu.Unlock()

	m.notifySubscribers(Event{Type: EventStatus, Snapshot: &s})
}

// Snapshot returns the latest snapshot.
func (m *MemoryStore) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// AddCheck records c and notifies all subscribers.
func (m *MemoryStore) AddCheck(c Check) {
	m.mu.Lock()
	m.ring[m.next] = c
	m.next = (m.next + 1) % len(m.ring)
	if m.count < len(m.ring) {
		m.count++
	}
	m.mu.Unlock()

	m.notifySubscribers(Event{Type: EventCheck, Check: &c})
	if c.Sounded {
		m.notifySubscribers(Event{Type: EventTone})
	}
}

// History returns up to limit checks, newest first.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) History(limit int) []Check {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Check, 0, n)
	idx := m.next
	for i := 0; i < n; i++ {
		idx = (idx - 1 + len(m.ring)) % len(m.ring)
		out = append(out, m.ring[idx])
	}
	return out
}

// Subscribe creates a new subscription and returns a channel for receiving
// events.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(ev Event) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
			// subscriber is slow, drop the event
		}
	}
}
