package repository

import (
	"context"
	"encoding/json"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameHistoryRepository struct {
	db *pgxpool.Pool
}

func NewGameHistoryRepository(db *pgxpool.Pool) *GameHistoryRepository {
	return &GameHistoryRepository{db: db}
}

const gameHistoryColumns = `id, user_id, username, game_mode, difficulty, score, time_seconds,
		tiles_clicked, hints_used, won, room_code, multiplayer, details, created_at`

// Create сохраняет запись игры в историю
func (r *GameHistoryRepository) Create(ctx context.Context, gh *domain.GameHistory) error {
	detailsJSON, err := json.Marshal(gh.Details)
	if err != nil || gh.Details == nil {
		detailsJSON = []byte("{}")
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO game_history
			(user_id, username, game_mode, difficulty, score, time_seconds,
			 tiles_clicked, hints_used, won, room_code, multiplayer, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at`,
		gh.UserID,
		gh.Username,
		gh.GameMode,
		gh.Difficulty,
		gh.Score,
		gh.TimeSeconds,
		gh.TilesRevealed,
		gh.HintsUsed,
		gh.Won,
		gh.RoomCode,
		gh.Multiplayer,
		detailsJSON,
	).Scan(&gh.ID, &gh.CreatedAt)
}

// TopByMode возвращает лучшие результаты режима: очки по убыванию, затем время
func (r *GameHistoryRepository) TopByMode(ctx context.Context, mode domain.GameMode, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT username, score, time_seconds, difficulty, won, created_at
		 FROM game_history
		 WHERE game_mode = $1
		 ORDER BY score DESC, time_seconds ASC, created_at ASC
		 LIMIT $2`,
		mode, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Score, &e.TimeSeconds, &e.Difficulty, &e.Won, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Rank = len(result) + 1
		result = append(result, &e)
	}
	return result, rows.Err()
}

// GetByUser возвращает историю игр пользователя
func (r *GameHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.GameHistory, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+gameHistoryColumns+`
		 FROM game_history
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGameHistory(rows)
}

// UserStats - статистика пользователя
type UserStats struct {
	UserID       int64 `json:"user_id"`
	TotalGames   int   `json:"total_games"`
	Wins         int   `json:"wins"`
	Losses       int   `json:"losses"`
	BestScore    int   `json:"best_score"`
	TotalTiles   int   `json:"total_tiles"`
	HintsUsed    int   `json:"hints_used"`
	Multiplayer  int   `json:"multiplayer_games"`
	TotalSeconds int   `json:"total_seconds"`
}

// GetUserStats возвращает статистику пользователя по всем играм
func (r *GameHistoryRepository) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	stats := &UserStats{UserID: userID}

	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE won),
			COUNT(*) FILTER (WHERE NOT won),
			COALESCE(MAX(score), 0),
			COALESCE(SUM(tiles_clicked), 0),
			COALESCE(SUM(hints_used), 0),
			COUNT(*) FILTER (WHERE multiplayer),
			COALESCE(SUM(time_seconds), 0)
		 FROM game_history
		 WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses, &stats.BestScore,
		&stats.TotalTiles, &stats.HintsUsed, &stats.Multiplayer, &stats.TotalSeconds)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func scanGameHistory(rows pgx.Rows) ([]*domain.GameHistory, error) {
	var result []*domain.GameHistory

	for rows.Next() {
		var (
			gh          domain.GameHistory
			detailsJSON []byte
		)

		if err := rows.Scan(
			&gh.ID, &gh.UserID, &gh.Username, &gh.GameMode, &gh.Difficulty,
			&gh.Score, &gh.TimeSeconds, &gh.TilesRevealed, &gh.HintsUsed,
			&gh.Won, &gh.RoomCode, &gh.Multiplayer, &detailsJSON, &gh.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(detailsJSON) > 0 {
			_ = json.Unmarshal(detailsJSON, &gh.Details)
		}

		result = append(result, &gh)
	}

	return result, rows.Err()
}
