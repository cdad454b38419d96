// Package dashboard provides the embedded web widget for Internet Pulse.
//
// The widget is a single page with inline CSS and JavaScript, compiled into
// the binary. The server package serves it at "/".
package dashboard

import "embed"

// Assets is an embedded filesystem containing the widget.
//
//	assets/
//	  index.html    - Widget page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
