package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/repository"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/retry"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// HistoryStore persists finished games
type HistoryStore interface {
	Create(ctx context.Context, gh *domain.GameHistory) error
	TopByMode(ctx context.Context, mode domain.GameMode, limit int) ([]*domain.LeaderboardEntry, error)
	GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.GameHistory, error)
	GetUserStats(ctx context.Context, userID int64) (*repository.UserStats, error)
}

// LeaderboardCache fronts TopByMode; implementations must tolerate being unconfigured
type LeaderboardCache interface {
	Get(ctx context.Context, mode domain.GameMode, limit int) ([]*domain.LeaderboardEntry, bool)
	Set(ctx context.Context, mode domain.GameMode, limit int, entries []*domain.LeaderboardEntry)
	Invalidate(ctx context.Context, mode domain.GameMode)
}

// SubmitRecord is one finished game headed for the leaderboard
type SubmitRecord struct {
	UserID   *int64
	Username string
	RoomCode *string
	Result   game.Result
}

type LeaderboardService struct {
	history HistoryStore
	cache   LeaderboardCache
	policy  retry.Policy
}

func NewLeaderboardService(history HistoryStore, cache LeaderboardCache, policy retry.Policy) *LeaderboardService {
	return &LeaderboardService{history: history, cache: cache, policy: policy}
}

// Submit stores a finished game. Zero-score games are skipped.
func (s *LeaderboardService) Submit(ctx context.Context, rec SubmitRecord) error {
	res := rec.Result
	if res.Score <= 0 {
		return nil
	}

	gh := &domain.GameHistory{
		UserID:        rec.UserID,
		Username:      rec.Username,
		GameMode:      domain.GameMode(res.Variant),
		Difficulty:    res.Difficulty,
		Score:         res.Score,
		TimeSeconds:   res.ElapsedTime,
		TilesRevealed: res.TilesRevealed,
		HintsUsed:     res.HintsUsed,
		Won:           res.Won,
		RoomCode:      rec.RoomCode,
		Multiplayer:   res.Mode == game.ModeMultiplayer,
	}
	if res.Level > 0 {
		gh.Details = map[string]interface{}{"level": res.Level}
	}

	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.history.Create(ctx, gh)
	}, func(err error, wait time.Duration) {
		logger.Warn("leaderboard submit retry", "error", err, "username", rec.Username, "wait", wait)
	})
	if err != nil {
		ResultSubmitFailures.WithLabelValues(string(res.Variant)).Inc()
		return fmt.Errorf("submit result: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, gh.GameMode)
	}
	return nil
}

// Top returns the best games of a variant, highest score first
func (s *LeaderboardService) Top(ctx context.Context, variant game.Variant, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	mode := domain.GameMode(variant)

	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx, mode, limit); ok {
			return entries, nil
		}
	}

	entries, err := retry.Value(ctx, s.policy, func(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
		return s.history.TopByMode(ctx, mode, limit)
	}, func(err error, wait time.Duration) {
		logger.Warn("leaderboard fetch retry", "error", err, "variant", variant, "wait", wait)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	if entries == nil {
		entries = []*domain.LeaderboardEntry{}
	}

	if s.cache != nil {
		s.cache.Set(ctx, mode, limit, entries)
	}
	return entries, nil
}

func (s *LeaderboardService) History(ctx context.Context, userID int64, limit int) ([]*domain.GameHistory, error) {
	if limit <= 0 || limit > MaxLeaderboardLimit {
		limit = DefaultLeaderboardLimit
	}
	return s.history.GetByUser(ctx, userID, limit)
}

func (s *LeaderboardService) Stats(ctx context.Context, userID int64) (*repository.UserStats, error) {
	return s.history.GetUserStats(ctx, userID)
}
