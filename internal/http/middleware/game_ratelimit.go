package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GameRateLimit limits game moves per user (not per IP) using Redis.
// Requires JWT middleware to run before this.
func GameRateLimit(maxMoves int, window time.Duration) gin.HandlerFunc {
	return userLimit("", maxMoves, window)
}

// GameRateLimitByType keeps a separate per-user budget for one kind of
// request, e.g. starting new sessions.
func GameRateLimitByType(kind string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return userLimit(kind, maxRequests, window)
}

func userLimit(kind string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, ok := userIDVal.(int64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		label := "game:" + c.FullPath()
		key := "game_rl:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		if kind != "" {
			label = "game:" + kind
			key = "game_rl:" + kind + ":" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		}
		ctx := c.Request.Context()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-GameRateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-GameRateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-GameRateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-val), 10))

		if val > int64(limit) {
			RLBlocked.WithLabelValues(label).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "game rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(label).Inc()
		c.Next()
	}
}
