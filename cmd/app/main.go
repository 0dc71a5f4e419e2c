package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/cache"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/config"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/db"
	httpServer "github.com/tysonsiruno/minesweeper-multiplayer/internal/http"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/http/handlers"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/http/middleware"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/repository"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/retry"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	} else if cfg.RedisAddr != "" {
		logger.Warn("redis unavailable, running without cache and rate limits", "addr", cfg.RedisAddr)
	}
	middleware.InitRedisRateLimiter(rdb)

	users := repository.NewUserRepository(dbPool)
	history := repository.NewGameHistoryRepository(dbPool)
	audit := service.NewAuditService(repository.NewAuditRepository(dbPool))

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.LeaderboardRetryAttempts
	leaderboard := service.NewLeaderboardService(history, cache.NewLeaderboardCache(rdb, cfg.LeaderboardCacheTTL), policy)

	sessions := service.NewSessionService(service.SessionOptions{
		Rules:          cfg.Rules,
		InputDebounce:  cfg.InputDebounce,
		InputLongPress: cfg.InputLongPress,
		HintDisplay:    cfg.HintDisplay,
		IdleTTL:        cfg.SessionIdleTTL,
	}, leaderboard, audit)

	hub := ws.NewHub(ws.HubOptions{
		Rules:      cfg.Rules,
		MaxPlayers: cfg.RoomMaxPlayers,
		IdleTTL:    cfg.SessionIdleTTL,
		Recorder:   leaderboard,
		Audit:      audit,
	})
	hub.StartCleanup()

	h := handlers.NewHandler(service.NewIdentityService(users), sessions, leaderboard, audit, hub)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, h, handlers.NewHealthHandler(dbPool, rdb, version), cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// flush pending leaderboard submits before the pool closes
	hub.Close()
	sessions.Close()

	logger.Info("server exited")
}
