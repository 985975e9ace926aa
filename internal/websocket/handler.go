package websocket

import (
	"context"
	"net/http"

	"bazaar-chat/internal/services"
	"bazaar-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	verifier *services.TokenVerifier
	hub      *Hub
}

func NewHandler(verifier *services.TokenVerifier, hub *Hub) *Handler {
	return &Handler{verifier: verifier, hub: hub}
}

// Connect upgrades the request and streams the caller's own events.
// Browsers cannot set headers on WebSocket upgrades, so the access
// token arrives as a query parameter.
func (h *Handler) Connect(c *gin.Context) {
	claims, err := h.verifier.ParseAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, claims.UserID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	client.ReadLoop()

	h.hub.Unregister(client)
}
