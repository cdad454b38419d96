package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by operations issued after [Monitor.Run] has exited.
var ErrStopped = errors.New("monitor is not running")

// Prober checks whether the remote probe endpoint can be reached.
// Any returned error means unreachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// LocalSignal reports the platform's own online determination.
type LocalSignal interface {
	Present() bool
}

// Sounder plays the reconnect tone. Play must not block.
type Sounder interface {
	Play()
}

// Trigger records why a probe ran.
type Trigger string

const (
	TriggerEnable   Trigger = "enable"
	TriggerSchedule Trigger = "schedule"
	TriggerSignal   Trigger = "signal"
)

// State is the connectivity state exposed for rendering.
type State struct {
	CheckingEnabled bool

	// IsOnline is the last known connectivity result.
	IsOnline bool

	// LastCheckedAt is the completion time of the most recent probe.
	// The zero value means no probe has completed yet.
	LastCheckedAt time.Time

	// HasSoundedSinceEnable is true once the reconnect tone has played in
	// the current enable cycle.
	HasSoundedSinceEnable bool
}

// Result is the outcome of a single probe.
type Result struct {
	Trigger Trigger

	// Online is true when the remote probe succeeded.
	Online bool

	// LocalAbsent is true when the local signal short-circuited the probe
	// and no remote request was made.
	LocalAbsent bool

	Latency   time.Duration
	CheckedAt time.Time
	Err       error

	// Sounded is true when this result played the reconnect tone.
	Sounded bool
}

// Config configures a [Monitor].
type Config struct {
	// Interval is the delay between a probe completing and the next one
	// starting. Required.
	Interval time.Duration

	// Prober performs the remote reachability check. Required.
	Prober Prober

	// Local gates the remote check. nil means always present.
	Local LocalSignal

	// Sounder plays the reconnect tone. nil means silent.
	Sounder Sounder

	Logger *slog.Logger

	// OnState is called from the loop goroutine after every state change.
	// It must not block and must not call back into the Monitor.
	OnState func(State)

	// OnResult is called from the loop goroutine after every probe result
	// has been applied. Same restrictions as OnState.
	OnResult func(Result)

	// Now overrides the clock used for LastCheckedAt.
	Now func() time.Time
}

type toggleReq struct {
	want  *bool // nil flips
	reply chan State
}

// Monitor is the connectivity monitor. Create one with [New] and drive it
// with [Monitor.Run].
type Monitor struct {
	interval time.Duration
	prober   Prober
	local    LocalSignal
	sounder  Sounder
	logger   *slog.Logger
	onState  func(State)
	onResult func(Result)
	now      func() time.Time

	toggles chan toggleReq
	signals chan bool
	results chan Result

	started atomic.Bool
	stopped chan struct{}

	mu    sync.RWMutex
	state State
}

// New creates a [Monitor]. Checking starts disabled and IsOnline starts true.
func New(cfg Config) (*Monitor, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if cfg.Prober == nil {
		return nil, errors.New("prober is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Monitor{
		interval: cfg.Interval,
		prober:   cfg.Prober,
		local:    cfg.Local,
		sounder:  cfg.Sounder,
		logger:   logger,
		onState:  cfg.OnState,
		onResult: cfg.OnResult,
		now:      now,
		toggles:  make(chan toggleReq),
		signals:  make(chan bool),
		results:  make(chan Result),
		stopped:  make(chan struct{}),
		state:    State{IsOnline: true},
	}, nil
}

// State returns a copy of the current state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Interval returns the delay between probes.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Toggle flips CheckingEnabled and returns the resulting state.
//
// Toggle blocks until the loop has applied the change, ctx is done, or the
// loop has exited ([ErrStopped]).
func (m *Monitor) Toggle(ctx context.Context) (State, error) {
	return m.request(ctx, toggleReq{reply: make(chan State, 1)})
}

// SetEnabled enables or disables checking. It is a no-op when the monitor is
// already in the requested mode.
func (m *Monitor) SetEnabled(ctx context.Context, enabled bool) (State, error) {
	return m.request(ctx, toggleReq{want: &enabled, reply: make(chan State, 1)})
}

func (m *Monitor) request(ctx context.Context, req toggleReq) (State, error) {
	select {
	case m.toggles <- req:
	case <-m.stopped:
		return m.State(), ErrStopped
	case <-ctx.Done():
		return m.State(), ctx.Err()
	}
	return <-req.reply, nil
}

// Signal delivers a platform "became reachable" (online=true) or "became
// unreachable" notification. While checking is enabled the loop sets
// IsOnline accordingly and probes immediately; otherwise it is ignored. An
// online signal while offline leaves the reconnect tone to that probe.
func (m *Monitor) Signal(ctx context.Context, online bool) error {
	select {
	case m.signals <- online:
		return nil
	case <-m.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the event loop. It blocks until ctx is cancelled and waits for any
// in-flight probe before returning. Only the first call runs; later calls
// return immediately.
func (m *Monitor) Run(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	defer close(m.stopped)

	var probes sync.WaitGroup
	defer probes.Wait()

	st := m.State()

	var (
		timer          *time.Timer
		tick           <-chan time.Time
		inFlight       bool
		pending        bool
		pendingTrigger Trigger
		// set by an online signal that arrived while offline; the next
		// successful result counts as the reconnect
		reconnectPending bool
	)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			tick = nil
		}
	}
	defer stopTimer()

	// trigger is the only place a probe is started; it replaces the schedule
	// handle rather than adding a second one.
	trigger := func(reason Trigger) {
		stopTimer()
		if inFlight {
			pending = true
			pendingTrigger = reason
			return
		}
		inFlight = true
		probes.Add(1)
		go func() {
			defer probes.Done()
			res := m.check(ctx, reason)
			select {
			case m.results <- res:
			case <-ctx.Done():
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-m.toggles:
			enable := !st.CheckingEnabled
			if req.want != nil {
				enable = *req.want
			}
			if enable != st.CheckingEnabled {
				st.CheckingEnabled = enable
				reconnectPending = false
				if enable {
					st.HasSoundedSinceEnable = false
					m.publish(st)
					m.logger.Info("connectivity checking enabled", "interval", m.interval.String())
					trigger(TriggerEnable)
				} else {
					stopTimer()
					pending = false
					m.publish(st)
					m.logger.Info("connectivity checking disabled")
				}
			}
			req.reply <- st

		case online := <-m.signals:
			if !st.CheckingEnabled {
				m.logger.Debug("platform signal ignored while disabled", "online", online)
				continue
			}
			m.logger.Info("platform connectivity signal", "online", online)
			reconnectPending = online && (!st.IsOnline || reconnectPending)
			st.IsOnline = online
			m.publish(st)
			trigger(TriggerSignal)

		case <-tick:
			timer = nil
			tick = nil
			if st.CheckingEnabled {
				trigger(TriggerSchedule)
			}

		case res := <-m.results:
			inFlight = false
			wasOnline := st.IsOnline && !reconnectPending
			st = m.apply(st, &res, reconnectPending)
			reconnectPending = false
			m.publish(st)
			m.logResult(res, wasOnline != st.IsOnline)
			if m.onResult != nil {
				m.onResult(res)
			}

			if !st.CheckingEnabled {
				pending = false
				continue
			}
			if pending {
				pending = false
				trigger(pendingTrigger)
				continue
			}
			timer = time.NewTimer(m.interval)
			tick = timer.C
		}
	}
}

// check runs the probe algorithm's I/O steps: local gate, then remote probe.
func (m *Monitor) check(ctx context.Context, reason Trigger) Result {
	res := Result{Trigger: reason}

	if m.local != nil && !m.local.Present() {
		res.LocalAbsent = true
		res.CheckedAt = m.now()
		return res
	}

	start := time.Now()
	err := m.prober.Probe(ctx)
	res.Latency = time.Since(start)
	res.Err = err
	res.Online = err == nil
	res.CheckedAt = m.now()
	return res
}

// apply folds a probe result into the state. reconnecting reports an online
// signal received while offline, which IsOnline no longer shows. LastCheckedAt
// is always the last field written.
func (m *Monitor) apply(st State, res *Result, reconnecting bool) State {
	if res.Online {
		if st.CheckingEnabled && (!st.IsOnline || reconnecting) && !st.HasSoundedSinceEnable {
			if m.sounder != nil {
				m.sounder.Play()
			}
			st.HasSoundedSinceEnable = true
			res.Sounded = true
		}
		st.IsOnline = true
	} else {
		st.IsOnline = false
	}
	st.LastCheckedAt = res.CheckedAt
	return st
}

func (m *Monitor) publish(st State) {
	m.mu.Lock()
	m.state = st
	m.mu.Unlock()

	if m.onState != nil {
		m.onState(st)
	}
}

func (m *Monitor) logResult(res Result, changed bool) {
	attrs := []any{
		"online", res.Online,
		"trigger", string(res.Trigger),
		"latency_ms", res.Latency.Milliseconds(),
	}
	if res.LocalAbsent {
		attrs = append(attrs, "local_signal", "absent")
	}
	if res.Err != nil {
		attrs = append(attrs, "error", res.Err.Error())
	}

	if changed {
		m.logger.Info("connectivity changed", attrs...)
		return
	}
	m.logger.Debug("probe completed", attrs...)
}
