package domain

import "time"

// AuditLog represents an audit log entry for tracking session lifecycle
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    *int64                 `db:"user_id" json:"user_id,omitempty"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth = "auth"
	AuditCategoryGame = "game"
	AuditCategoryRoom = "room"
)

// Audit actions
const (
	// Auth actions
	AuditActionLogin = "login"

	// Game actions
	AuditActionGameStart    = "game_start"
	AuditActionLevelCleared = "level_cleared"
	AuditActionGameEnd      = "game_end"
	AuditActionGameQuit     = "game_quit"

	// Room actions
	AuditActionRoomCreate = "room_create"
	AuditActionRoomStart  = "room_start"
	AuditActionRoomEnd    = "room_end"
)
