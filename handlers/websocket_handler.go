package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/courtside/club-system/schedule"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served behind the club's reverse proxy; origin policy
	// is enforced there.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebsocketHandler struct {
	hub    *schedule.Hub
	logger *slog.Logger
}

func NewWebsocketHandler(hub *schedule.Hub, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, logger: logger}
}

// SubscribeGroupHandler handles GET /ws/groups/{groupID}: it upgrades
// the connection and subscribes the client to the group's standings
// room. The stream is push-only.
func (h *WebsocketHandler) SubscribeGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.Int("group_id", groupID), slog.Any("error", err))
		return
	}

	client := &schedule.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: strconv.Itoa(groupID),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
