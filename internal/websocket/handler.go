package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/goshop/internal/live"
)

// HandleWebSocket upgrades the connection and streams change messages plus
// snapshots of the views named in the "views" query parameter (all views when
// omitted).
func HandleWebSocket(hub *Hub, registry *live.Registry, views Views, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, unknown := views.Select(r.URL.Query().Get("views"))
		if len(unknown) > 0 {
			http.Error(w, "unknown views: "+strings.Join(unknown, ", "), http.StatusBadRequest)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, logger)
		client.Run(r.Context(), registry, views, names)
	}
}
