package handlers

import (
	"net/http"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/ws"

	"github.com/gin-gonic/gin"
)

// ListRooms returns open rooms; ?all=true includes games in progress
func (h *Handler) ListRooms(c *gin.Context) {
	all := c.Query("all") == "true"

	rooms := make([]ws.RoomInfo, 0)
	for _, r := range h.Hub.List() {
		if all || r.Status == ws.StateWaiting {
			rooms = append(rooms, r)
		}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}
