package domain

import "time"

// GameMode - вариант правил
type GameMode string

const (
	GameModeStandard GameMode = "standard"
	GameModeLuck     GameMode = "luck"
	GameModeTimeBomb GameMode = "timebomb"
	GameModeSurvival GameMode = "survival"
)

// GameHistory - запись завершённой игры для лидерборда
type GameHistory struct {
	ID            int64                  `db:"id" json:"id"`
	UserID        *int64                 `db:"user_id" json:"user_id,omitempty"`
	Username      string                 `db:"username" json:"username"`
	GameMode      GameMode               `db:"game_mode" json:"game_mode"`
	Difficulty    string                 `db:"difficulty" json:"difficulty"`
	Score         int                    `db:"score" json:"score"`
	TimeSeconds   int                    `db:"time_seconds" json:"time_seconds"`
	TilesRevealed int                    `db:"tiles_clicked" json:"tiles_clicked"`
	HintsUsed     int                    `db:"hints_used" json:"hints_used"`
	Won           bool                   `db:"won" json:"won"`
	RoomCode      *string                `db:"room_code" json:"room_code,omitempty"`
	Multiplayer   bool                   `db:"multiplayer" json:"multiplayer"`
	Details       map[string]interface{} `db:"details" json:"details,omitempty"`
	CreatedAt     time.Time              `db:"created_at" json:"created_at"`
}

// LeaderboardEntry - строка рейтинга
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	TimeSeconds int       `json:"time_seconds"`
	Difficulty  string    `json:"difficulty"`
	Won         bool      `json:"won"`
	CreatedAt   time.Time `json:"created_at"`
}
