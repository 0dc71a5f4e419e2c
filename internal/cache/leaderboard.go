package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const leaderboardPrefix = "leaderboard:"

// LeaderboardCache keeps ranked lists per game mode in Redis.
// A nil client turns every call into a miss.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &LeaderboardCache{client: client, ttl: ttl}
}

func leaderboardKey(mode domain.GameMode, limit int) string {
	return leaderboardPrefix + string(mode) + ":" + strconv.Itoa(limit)
}

// Get returns the cached list; ok is false on a miss or any Redis error
func (c *LeaderboardCache) Get(ctx context.Context, mode domain.GameMode, limit int) ([]*domain.LeaderboardEntry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, leaderboardKey(mode, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("leaderboard cache read failed", "error", err, "mode", mode)
		}
		return nil, false
	}
	var entries []*domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *LeaderboardCache) Set(ctx context.Context, mode domain.GameMode, limit int, entries []*domain.LeaderboardEntry) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, leaderboardKey(mode, limit), raw, c.ttl).Err(); err != nil {
		logger.Warn("leaderboard cache write failed", "error", err, "mode", mode)
	}
}

// Invalidate drops every cached list of mode
func (c *LeaderboardCache) Invalidate(ctx context.Context, mode domain.GameMode) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, leaderboardPrefix+string(mode)+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("leaderboard cache scan failed", "error", err, "mode", mode)
		return
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}
