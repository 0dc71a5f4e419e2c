package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT requires "Authorization: Bearer <token>" and puts user_id (int64) into the context
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			AuthRejected.WithLabelValues("missing").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		userID, err := service.ParseJWT(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrTokenExpired) {
				msg = "token expired"
			}
			AuthRejected.WithLabelValues(strings.ReplaceAll(msg, " ", "_")).Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
