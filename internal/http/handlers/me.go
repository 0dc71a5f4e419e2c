package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	who, err := h.Identity.Identify(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "user is inactive"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		}
		return
	}

	resp := gin.H{
		"id":           who.UserID,
		"username":     who.Username,
		"display_name": who.DisplayName,
		"verified":     who.Verified,
	}
	if cur, ok := h.Sessions.Current(userID); ok {
		resp["session_id"] = cur.ID
	}
	c.JSON(http.StatusOK, resp)
}

// MyActivity returns the caller's audit trail, newest first
func (h *Handler) MyActivity(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	logs, err := h.Audit.GetUserAuditLogs(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": logs})
}
