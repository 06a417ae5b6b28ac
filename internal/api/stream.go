package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served to whatever origin hosts it; there are no
	// credentials to protect.
	CheckOrigin: func(*http.Request) bool { return true },
}

type streamFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleStream pushes the quote board and game state over a websocket on
// the same cadence the board refreshes. The client is not expected to
// send anything; its read side only detects disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := s.cfg.QuoteRefreshEvery
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	send := func() error {
		if err := conn.WriteJSON(streamFrame{Type: "quotes", Data: s.board.Snapshot()}); err != nil {
			return err
		}
		return conn.WriteJSON(streamFrame{Type: "game", Data: s.game.State()})
	}
	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := send(); err != nil {
				return
			}
		}
	}
}
