package handler

import (
	"errors"
	"net/http"
	"slices"

	"note-bookmark-server/internal/middleware"
	"note-bookmark-server/internal/websocket"
	"note-bookmark-server/pkg/response"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler upgrades authenticated requests into live change feed
// connections. It sits behind AuthMiddleware, so the session cookie has
// already been verified.
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader ws.Upgrader
	log      logrus.FieldLogger
}

func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string, readBuf, writeBuf int, log logrus.FieldLogger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		log: log,
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	if h.hub.UserConnections(userID) >= h.hub.MaxConnPerUser() {
		response.TooManyRequests(w, "Too many live connections")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("failed to upgrade connection")
		return
	}

	client := websocket.NewClient(uuid.New().String(), userID, conn, h.hub)
	if err := h.hub.Register(client); err != nil {
		if errors.Is(err, websocket.ErrTooManyConnections) {
			conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.ClosePolicyViolation, err.Error()))
		}
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
