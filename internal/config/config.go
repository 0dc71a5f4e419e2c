package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string
	LogLevel      string
	LogJSON       bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Game limits
	GameRateLimit  int
	GameRateWindow int

	// Engine tunables
	Rules          game.Rules
	InputDebounce  time.Duration
	InputLongPress time.Duration
	HintDisplay    time.Duration
	SessionIdleTTL time.Duration
	RoomMaxPlayers int

	// Leaderboard
	LeaderboardRetryAttempts int
	LeaderboardCacheTTL      time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	cfg := fromEnv()
	cfg.DatabaseURL = dbURL
	cfg.JWTSecret = jwtSecret
	return cfg
}

// fromEnv reads everything that has a default
func fromEnv() *Config {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	rules := game.DefaultRules()
	rules.HintsPerGame = envInt("HINTS_PER_GAME", rules.HintsPerGame)
	rules.Survival.BaseMines = envInt("SURVIVAL_BASE_MINES", rules.Survival.BaseMines)
	rules.Survival.MineIncrement = envInt("SURVIVAL_MINE_INCREMENT", rules.Survival.MineIncrement)
	rules.Survival.ReservedSafeCells = envInt("SURVIVAL_RESERVED_SAFE", rules.Survival.ReservedSafeCells)
	rules.TimeBomb.FlagBonus = envFloat("TIMEBOMB_FLAG_BONUS", rules.TimeBomb.FlagBonus)
	// TIMEBOMB_START_EASY, TIMEBOMB_BONUS_HACKER, ...
	for _, tier := range game.TimeBombTiers {
		suffix := strings.ToUpper(string(tier))
		rules.TimeBomb.Start[tier] = envFloat("TIMEBOMB_START_"+suffix, rules.TimeBomb.Start[tier])
		rules.TimeBomb.Bonus[tier] = envFloat("TIMEBOMB_BONUS_"+suffix, rules.TimeBomb.Bonus[tier])
	}

	return &Config{
		AppPort:       port,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:      envString("LOG_LEVEL", "info"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		GameRateLimit:  envInt("GAME_RATE_LIMIT", 120), // макс действий за ->
		GameRateWindow: envInt("GAME_RATE_WINDOW", 60), // -> секунд

		Rules:          rules,
		InputDebounce:  time.Duration(envInt("INPUT_DEBOUNCE_MS", 300)) * time.Millisecond,
		InputLongPress: time.Duration(envInt("INPUT_LONG_PRESS_MS", 500)) * time.Millisecond,
		HintDisplay:    time.Duration(envInt("HINT_DISPLAY_MS", 2000)) * time.Millisecond,
		SessionIdleTTL: envDuration("SESSION_IDLE_TTL", time.Hour),
		RoomMaxPlayers: envInt("ROOM_MAX_PLAYERS", 3),

		LeaderboardRetryAttempts: envInt("LEADERBOARD_RETRY_ATTEMPTS", 3),
		LeaderboardCacheTTL:      envDuration("LEADERBOARD_CACHE_TTL", 30*time.Second),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt accepts only non-negative integers; anything else keeps the default
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("ignoring invalid integer env", "key", key, "value", v)
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
		logger.Warn("ignoring invalid number env", "key", key, "value", v)
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		logger.Warn("ignoring invalid duration env", "key", key, "value", v)
	}
	return def
}
