package ws

import (
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
)

// client → server
type CreateRoomPayload struct {
	Difficulty string `json:"difficulty"`
	MaxPlayers int    `json:"max_players"`
	GameMode   string `json:"game_mode"`
	Tier       string `json:"timebomb_tier"`
}

type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
}

type GameActionPayload struct {
	Action string `json:"action"` // reveal | flag | eliminated
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
	Tiles  int    `json:"tiles"`
	Level  int    `json:"level,omitempty"`
}

type GameFinishedPayload struct {
	Score int  `json:"score"`
	Time  int  `json:"time"`
	Won   bool `json:"won"`
}

type ChangeModePayload struct {
	GameMode string `json:"game_mode"`
	Tier     string `json:"timebomb_tier"`
}

// server → client
type ConnectedPayload struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type RoomPayload struct {
	RoomCode   string               `json:"room_code"`
	Host       string               `json:"host"`
	GameMode   game.Variant         `json:"game_mode"`
	Tier       game.TimeBombTier    `json:"timebomb_tier,omitempty"`
	Difficulty game.Difficulty      `json:"difficulty"`
	MaxPlayers int                  `json:"max_players"`
	Status     string               `json:"status"`
	Players    []domain.Participant `json:"players"`
}

type PlayersPayload struct {
	Username string               `json:"username"`
	Players  []domain.Participant `json:"players"`
	AllReady bool                 `json:"all_ready,omitempty"`
}

type GameStartPayload struct {
	BoardSeed   int64                `json:"board_seed"`
	GameMode    game.Variant         `json:"game_mode"`
	Tier        game.TimeBombTier    `json:"timebomb_tier,omitempty"`
	Difficulty  game.Difficulty      `json:"difficulty"`
	Players     []domain.Participant `json:"players"`
	CurrentTurn string               `json:"current_turn,omitempty"`
}

type PlayerActionPayload struct {
	Username string `json:"username"`
	Action   string `json:"action"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Tiles    int    `json:"tiles"`
	Level    int    `json:"level,omitempty"`
}

type TurnChangedPayload struct {
	CurrentTurn string `json:"current_turn"`
}

type PlayerFinishedPayload struct {
	Username string               `json:"username"`
	Score    int                  `json:"score"`
	Time     int                  `json:"time"`
	Players  []domain.Participant `json:"players"`
}

type GameEndedPayload struct {
	Results []game.ParticipantResult `json:"results"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
