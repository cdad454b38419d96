package internetpulse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/internetpulse/dashboard"
	"github.com/jpalmerr/internetpulse/internal/monitor"
	"github.com/jpalmerr/internetpulse/internal/netwatch"
	"github.com/jpalmerr/internetpulse/internal/probe"
	"github.com/jpalmerr/internetpulse/internal/server"
	"github.com/jpalmerr/internetpulse/internal/store"
	"github.com/jpalmerr/internetpulse/internal/tone"
)

// CheckInterval is the fixed delay between one probe completing and the
// next one starting.
const CheckInterval = 10 * time.Second

const (
	defaultPort  = 8080
	defaultTitle = "Internet Pulse"
)

// ErrNotRunning is returned by [Pulse.Toggle] when [Pulse.Start] is not
// running.
var ErrNotRunning = errors.New("internetpulse: not running")

// Pulse is the connectivity monitor with its surfaces attached.
//
// It is created using [New] with functional options and started with
// [Pulse.Start]. Checking starts disabled; [Pulse.Toggle] turns it on and
// off.
//
//	p, err := internetpulse.New(internetpulse.WithPort(9090))
//	if err != nil {
//	    slog.Error("failed to create pulse", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	p.Start(ctx) // blocks until context cancelled
type Pulse struct {
	title          string
	port           int
	headless       bool
	autoStart      bool
	watchInterval  time.Duration
	logger         *slog.Logger
	checkCallbacks []func(CheckResult)
	stateCallbacks []func(Snapshot)

	client  *probe.Client
	local   monitor.LocalSignal
	store   *store.MemoryStore
	player  *tone.Player
	monitor *monitor.Monitor
	// user callbacks run here, off the monitor goroutine
	callbacks *dispatcher

	started atomic.Bool
	running atomic.Bool
}

// New creates a new [Pulse] with the given options.
//
// Defaults:
//   - Probe: HEAD https://www.google.com, 10 second timeout
//   - Port: 8080
//   - Sound: beep
//   - History: 100 checks
//   - Local signal sampled every 2 seconds
func New(opts ...Option) (*Pulse, error) {
	cfg := &pulseConfig{
		title:         defaultTitle,
		probeURL:      probe.DefaultURL,
		probeTimeout:  probe.DefaultTimeout,
		port:          defaultPort,
		sound:         SoundBeep,
		historySize:   store.DefaultHistorySize,
		watchInterval: netwatch.DefaultInterval,
		interval:      CheckInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := probe.NewClient(cfg.probeURL, cfg.probeMethod, cfg.probeTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe client: %w", err)
	}

	local := cfg.local
	if local == nil {
		local = probe.NewInterfaces()
	}

	p := &Pulse{
		title:          cfg.title,
		port:           cfg.port,
		headless:       cfg.headless,
		autoStart:      cfg.autoStart,
		watchInterval:  cfg.watchInterval,
		logger:         logger,
		checkCallbacks: cfg.checkCallbacks,
		stateCallbacks: cfg.stateCallbacks,
		client:         client,
		local:          local,
		store:          store.NewMemoryStore(cfg.historySize),
		callbacks:      newDispatcher(),
	}

	if opener := soundOpener(cfg); opener != nil {
		p.player = tone.NewPlayer(opener, tone.Chime, logger)
	}

	monCfg := monitor.Config{
		Interval: cfg.interval,
		Prober:   client,
		Local:    local,
		Logger:   logger,
		OnState:  p.handleState,
		OnResult: p.handleResult,
	}
	if p.player != nil {
		monCfg.Sounder = p.player
	}

	mon, err := monitor.New(monCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}
	p.monitor = mon
	p.store.SetSnapshot(p.toStoreSnapshot(mon.State()))

	return p, nil
}

func soundOpener(cfg *pulseConfig) tone.Opener {
	if cfg.opener != nil {
		return cfg.opener
	}
	switch cfg.sound {
	case SoundOff:
		return nil
	case SoundBell:
		return tone.BellOpener(os.Stderr)
	default:
		title := ""
		if cfg.notify {
			title = cfg.title
		}
		return tone.BeepOpener(title)
	}
}

// Start runs the monitor until ctx is cancelled.
//
// Start is a blocking call. While it runs:
//
//   - The monitor loop owns all state; Toggle and local network
//     transitions are delivered to it
//   - Every state change and check result is recorded for Snapshot,
//     History and Subscribe
//   - Unless headless, the web widget is served at http://localhost:<port>
//
// Start may be called only once. Returns nil on graceful shutdown and an
// error if the HTTP server fails to start.
func (p *Pulse) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	if !p.started.CompareAndSwap(false, true) {
		return errors.New("internetpulse: Start called more than once")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer p.client.Close()
	if p.player != nil {
		defer func() {
			if err := p.player.Close(); err != nil {
				p.logger.Warn("failed to close tone output", "error", err)
			}
		}()
	}

	p.logger.Info("internet pulse starting",
		"probe_url", p.client.URL(),
		"interval", p.monitor.Interval().String(),
		"headless", p.headless,
	)

	if !p.headless {
		srv := server.NewServer(p.store, p.toggleForServer, p.port, dashboard.Assets, p.title, p.logger)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		p.logger.Info("widget available", "url", fmt.Sprintf("http://localhost:%d", p.port))
	}

	stopCallbacks := make(chan struct{})
	go p.callbacks.run(stopCallbacks)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.monitor.Run(ctx)
	}()
	p.running.Store(true)
	defer p.running.Store(false)

	watcher := netwatch.NewWatcher(p.local, p.watchInterval, p.logger)
	watcher.Start(ctx)

	// forward local transitions to the monitor
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range watcher.Events() {
			if err := p.monitor.Signal(ctx, ev.Online); err != nil {
				return
			}
		}
	}()

	if p.autoStart {
		if _, err := p.monitor.SetEnabled(ctx, true); err != nil && ctx.Err() == nil {
			p.logger.Warn("auto start failed", "error", err)
		}
	}

	<-ctx.Done()
	watcher.Stop()
	wg.Wait()

	// callbacks already queued still run
	close(stopCallbacks)
	<-p.callbacks.done

	p.logger.Info("internet pulse stopped")
	return nil
}

// Toggle flips checking on or off and returns the resulting snapshot.
// Enabling probes immediately.
//
// Returns [ErrNotRunning] when Start is not running, or ctx.Err() if ctx is
// done first.
func (p *Pulse) Toggle(ctx context.Context) (Snapshot, error) {
	if !p.running.Load() {
		return p.Snapshot(), ErrNotRunning
	}
	st, err := p.monitor.Toggle(ctx)
	if errors.Is(err, monitor.ErrStopped) {
		return toSnapshot(st), ErrNotRunning
	}
	return toSnapshot(st), err
}

func (p *Pulse) toggleForServer(ctx context.Context) error {
	_, err := p.Toggle(ctx)
	return err
}

// Snapshot returns the current state.
func (p *Pulse) Snapshot() Snapshot {
	return toSnapshot(p.monitor.State())
}

// History returns up to n recent checks, newest first. n <= 0 returns every
// retained check.
func (p *Pulse) History(n int) []CheckResult {
	checks := p.store.History(n)
	out := make([]CheckResult, len(checks))
	for i, c := range checks {
		out[i] = fromStoreCheck(c)
	}
	return out
}

// Subscribe returns a channel of snapshots, one per state change, and a
// function that ends the subscription and closes the channel.
//
// Delivery is best effort: a subscriber that falls behind misses
// intermediate snapshots.
func (p *Pulse) Subscribe() (<-chan Snapshot, func()) {
	events := p.store.Subscribe()
	out := make(chan Snapshot, 16)

	go func() {
		defer close(out)
		for ev := range events {
			if ev.Type != store.EventStatus || ev.Snapshot == nil {
				continue
			}
			select {
			case out <- fromStoreSnapshot(*ev.Snapshot):
			default:
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() { p.store.Unsubscribe(events) })
	}
}

// Title returns the configured widget title.
func (p *Pulse) Title() string {
	return p.title
}

// Port returns the configured HTTP port.
func (p *Pulse) Port() int {
	return p.port
}

// ProbeURL returns the URL probed for reachability.
func (p *Pulse) ProbeURL() string {
	return p.client.URL()
}

// Interval returns the delay between probes.
func (p *Pulse) Interval() time.Duration {
	return p.monitor.Interval()
}

// handleState runs on the monitor goroutine for every state change. The
// store is updated in place; user callbacks are queued.
func (p *Pulse) handleState(st monitor.State) {
	p.store.SetSnapshot(p.toStoreSnapshot(st))

	if len(p.stateCallbacks) > 0 {
		snap := toSnapshot(st)
		p.callbacks.enqueue(func() {
			for _, cb := range p.stateCallbacks {
				invokeCallbackSafe("state", cb, snap, p.logger)
			}
		})
	}
}

// handleResult runs on the monitor goroutine for every probe result, after
// handleState has recorded the state it produced.
func (p *Pulse) handleResult(res monitor.Result) {
	check := CheckResult{
		ID:          uuid.NewString(),
		Trigger:     string(res.Trigger),
		Status:      statusOf(res.Online),
		LocalAbsent: res.LocalAbsent,
		Latency:     res.Latency,
		CheckedAt:   res.CheckedAt,
		Error:       res.Err,
		Sounded:     res.Sounded,
	}
	if res.LocalAbsent && check.Error == nil {
		check.Error = errLocalAbsent
	}

	// store first; callbacks fire after data is recorded
	p.store.AddCheck(toStoreCheck(check))

	if len(p.checkCallbacks) > 0 {
		p.callbacks.enqueue(func() {
			for _, cb := range p.checkCallbacks {
				invokeCallbackSafe("check", cb, check, p.logger)
			}
		})
	}
}

var errLocalAbsent = errors.New("no active network interface")

func toSnapshot(st monitor.State) Snapshot {
	return Snapshot{
		CheckingEnabled:       st.CheckingEnabled,
		Status:                statusOf(st.IsOnline),
		LastCheckedAt:         st.LastCheckedAt,
		HasSoundedSinceEnable: st.HasSoundedSinceEnable,
	}
}

func (p *Pulse) toStoreSnapshot(st monitor.State) store.Snapshot {
	s := store.Snapshot{
		CheckingEnabled:       st.CheckingEnabled,
		Status:                statusOf(st.IsOnline).String(),
		HasSoundedSinceEnable: st.HasSoundedSinceEnable,
		IntervalSeconds:       int(p.monitor.Interval() / time.Second),
	}
	if !st.LastCheckedAt.IsZero() {
		t := st.LastCheckedAt
		s.LastCheckedAt = &t
	}
	return s
}

func fromStoreSnapshot(s store.Snapshot) Snapshot {
	snap := Snapshot{
		CheckingEnabled:       s.CheckingEnabled,
		Status:                Status(s.Status),
		HasSoundedSinceEnable: s.HasSoundedSinceEnable,
	}
	if s.LastCheckedAt != nil {
		snap.LastCheckedAt = *s.LastCheckedAt
	}
	return snap
}

func toStoreCheck(c CheckResult) store.Check {
	var errStr *string
	if c.Error != nil {
		s := c.Error.Error()
		errStr = &s
	}
	return store.Check{
		ID:          c.ID,
		Trigger:     c.Trigger,
		Status:      c.Status.String(),
		LocalAbsent: c.LocalAbsent,
		LatencyMs:   c.Latency.Milliseconds(),
		CheckedAt:   c.CheckedAt,
		Error:       errStr,
		Sounded:     c.Sounded,
	}
}

func fromStoreCheck(c store.Check) CheckResult {
	out := CheckResult{
		ID:          c.ID,
		Trigger:     c.Trigger,
		Status:      Status(c.Status),
		LocalAbsent: c.LocalAbsent,
		Latency:     time.Duration(c.LatencyMs) * time.Millisecond,
		CheckedAt:   c.CheckedAt,
		Sounded:     c.Sounded,
	}
	if c.Error != nil {
		out.Error = errors.New(*c.Error)
	}
	return out
}

// invokeCallbackSafe calls cb with panic recovery. Panics are logged with a
// correlation id and stack trace but do not propagate.
func invokeCallbackSafe[T any](kind string, cb func(T), v T, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("callback panicked",
				"callback", kind,
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(v)
}
