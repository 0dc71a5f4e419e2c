package handlers

import (
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Identity    *service.IdentityService
	Sessions    *service.SessionService
	Leaderboard *service.LeaderboardService
	Audit       *service.AuditService
	Hub         *ws.Hub
}

func NewHandler(identity *service.IdentityService, sessions *service.SessionService, leaderboard *service.LeaderboardService, audit *service.AuditService, hub *ws.Hub) *Handler {
	return &Handler{
		Identity:    identity,
		Sessions:    sessions,
		Leaderboard: leaderboard,
		Audit:       audit,
		Hub:         hub,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
