package handlers

import (
	"net/http"
	"strconv"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns the top scores of one variant: ?mode=standard&limit=10
func (h *Handler) GetLeaderboard(c *gin.Context) {
	variant := game.VariantStandard
	if m := c.Query("mode"); m != "" {
		v, ok := game.ParseVariant(m)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidVariant.Error()})
			return
		}
		variant = v
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	top, err := h.Leaderboard.Top(c.Request.Context(), variant, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": top,
		"mode":        variant,
	})
}

// MyGames returns the caller's recent finished games
func (h *Handler) MyGames(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	games, err := h.Leaderboard.History(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// MyStats returns aggregate counts of the caller's games
func (h *Handler) MyStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.Leaderboard.Stats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
