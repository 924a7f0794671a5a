package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// healthStreamInterval is how often the health snapshot is pushed to
// connected dashboards.
const healthStreamInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Read-only data; dashboards connect from anywhere.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleHealthStream pushes provider health snapshots over a websocket until
// the client goes away.
func (s *Server) handleHealthStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(healthStreamInterval)
	defer ticker.Stop()

	send := func() error {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck
		return conn.WriteJSON(map[string]any{
			"providers": s.service.HealthSnapshot(),
			"sent_at":   time.Now().UTC(),
		})
	}

	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := send(); err != nil {
				return
			}
		}
	}
}
