package ws

import (
	"net/http"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades an authenticated request into a realtime client.
// Browsers cannot set headers on a websocket handshake, so the JWT rides in ?token=.
func HandleWS(hub *Hub, identity *service.IdentityService, audit *service.AuditService, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		who, err := identity.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err, "user_id", who.UserID)
			return
		}

		logger.Info("ws client connected", "user_id", who.UserID)
		audit.LogLogin(c.Request.Context(), who.UserID, c.ClientIP(), c.Request.UserAgent())
		client := NewClient(*who, conn, hub)
		go client.Run()
	}
}
