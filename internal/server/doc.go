// Package server provides the HTTP server for the Internet Pulse web widget.
//
// It handles all HTTP concerns:
//
//   - Widget serving: the embedded HTML/CSS/JS page at "/"
//   - REST API: "/api/status", "/api/toggle" and "/api/history"
//   - Server-Sent Events: real-time store events at "/api/sse"
//   - WebSocket: the same events at "/api/ws", plus toggle commands
//   - Audio: the reconnect chime as WAV at "/api/tone.wav"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
