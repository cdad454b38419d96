package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jpalmerr/internetpulse/internal/store"
)

const wsWriteTimeout = 5 * time.Second

// actionToggle is the only command accepted from websocket clients.
const actionToggle = "toggle"

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

// sameOrigin accepts requests without an Origin header (non-browser
// clients) and browser requests whose Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(strings.TrimSpace(r.Host))
	originHost := strings.ToLower(strings.TrimSpace(u.Host))
	return host == originHost
}

type wsCommand struct {
	Action string `json:"action"`
}

// handleWS pushes store events to a websocket client and accepts toggle
// commands from it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	snap := s.store.Snapshot()
	if err := writeEvent(conn, store.Event{Type: store.EventStatus, Snapshot: &snap}); err != nil {
		return
	}

	// the reader goroutine never writes; gorilla allows one reader and one
	// writer concurrently
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var cmd wsCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debug("websocket read ended", "error", err)
				}
				return
			}
			s.handleCommand(r, cmd)
		}
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(wsWriteTimeout))
			return
		}
	}
}

func (s *Server) handleCommand(r *http.Request, cmd wsCommand) {
	switch cmd.Action {
	case actionToggle:
		if s.toggle == nil {
			return
		}
		if err := s.toggle(r.Context()); err != nil {
			s.logger.Warn("websocket toggle failed", "error", err)
		}
	default:
		s.logger.Debug("unknown websocket action", "action", cmd.Action)
	}
}

func writeEvent(conn *websocket.Conn, ev store.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(ev)
}
