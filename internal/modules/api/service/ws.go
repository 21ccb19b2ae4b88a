package service

import (
	"net/http"

	"github.com/gorilla/websocket"

	notifysvc "signal_server/internal/modules/notify/service"
	"signal_server/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS решается на уровне основного хендлера
		return true
	},
}

// handleWebSocket upgrades the connection and subscribes the caller to its
// own order channel. The stream is one-way: server pushes lifecycle events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws upgrade: %v", err)
		return
	}

	s.hub.Register(conn, notifysvc.OwnerChannel(user.ID))
}
