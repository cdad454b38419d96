// Package internetpulse monitors internet connectivity and announces when it
// comes back.
//
// A single toggle turns periodic checking on and off. While enabled, a probe
// runs immediately and then every [CheckInterval] after the previous probe
// completes. Each probe first consults the local network-presence signal
// (is any non-loopback interface up with a routable address?) and, only if
// present, issues a best-effort HTTP request to the probe URL; any response
// at all counts as connected. A short chime plays once per enable cycle when
// a probe succeeds after connectivity was lost.
//
// # Quick Start
//
//	p, _ := internetpulse.New(internetpulse.WithAutoStart(true))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	p.Start(ctx) // blocks until ctx is cancelled; widget on :8080
//
// # Surfaces
//
// [Pulse.Start] serves a web widget with a JSON, SSE and websocket API
// unless [WithHeadless] is set. The internetpulse binary adds a terminal UI
// and a system tray icon on top of the same [Pulse] methods:
// [Pulse.Toggle], [Pulse.Snapshot], [Pulse.History] and [Pulse.Subscribe].
//
// # Architecture
//
//   - internal/monitor: the event loop that owns all connectivity state
//   - internal/probe: the HTTP probe and local interface signal
//   - internal/netwatch: turns the local signal into online/offline events
//   - internal/tone: the reconnect chime
//   - internal/store: latest snapshot and recent checks with pub/sub
//   - internal/server: HTTP server, SSE and websocket
//   - dashboard: embedded web widget
package internetpulse
