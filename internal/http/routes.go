package http

import (
	"os"
	"strconv"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/config"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/http/handlers"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/http/middleware"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, cfg *config.Config) {
	// read limits from env, with safe defaults
	apiRateLimit := envInt("API_RATE_LIMIT", 120)
	apiRateWindow := time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second
	wsRateLimit := envInt("WS_RATE_LIMIT", 20)

	// Health checks and metrics (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	gameRateLimit := 120
	gameRateWindow := time.Minute
	if cfg != nil {
		gameRateLimit = cfg.GameRateLimit
		gameRateWindow = time.Duration(cfg.GameRateWindow) * time.Second
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, gameRateLimit, gameRateWindow)

	// Realtime rooms
	allowedOrigin := ""
	if cfg != nil {
		allowedOrigin = cfg.AllowedOrigin
	}
	r.GET("/ws", middleware.SimpleRateLimit(wsRateLimit, time.Minute), ws.HandleWS(h.Hub, h.Identity, h.Audit, allowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, gameRateLimit int, gameRateWindow time.Duration) {
	// Identity
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/activity", middleware.JWT(), h.MyActivity)

	// History and stats
	api.GET("/me/games", middleware.JWT(), h.MyGames)
	api.GET("/me/stats", middleware.JWT(), h.MyStats)
	api.GET("/leaderboard", h.GetLeaderboard)

	// Solo sessions; moves are limited per user, not per IP
	gameRL := middleware.GameRateLimit(gameRateLimit, gameRateWindow)
	startRL := middleware.GameRateLimitByType("start", max(gameRateLimit/4, 1), gameRateWindow)

	game := api.Group("/game")
	game.Use(middleware.JWT())
	{
		game.POST("/start", startRL, h.StartGame)
		game.GET("/current", h.CurrentGame)
		game.GET("/:id", h.GameState)
		game.POST("/:id/reveal", gameRL, h.Reveal)
		game.POST("/:id/flag", gameRL, h.Flag)
		game.POST("/:id/hint", gameRL, h.Hint)
		game.POST("/:id/input", gameRL, h.Input)
		game.POST("/:id/new", startRL, h.NewGame)
		game.POST("/:id/quit", h.QuitGame)
	}

	// Multiplayer lobby
	api.GET("/rooms", h.ListRooms)
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
