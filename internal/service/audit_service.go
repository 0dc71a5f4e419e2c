package service

import (
	"context"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/game"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
)

// AuditStore is where audit entries end up
type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
	GetBySession(ctx context.Context, sessionID string) ([]*domain.AuditLog, error)
}

// AuditService handles audit logging. A nil service drops every entry.
type AuditService struct {
	repo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, userID *int64, action, category string, details map[string]interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	log := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

// LogLogin logs a user login
func (s *AuditService) LogLogin(ctx context.Context, userID int64, ip, userAgent string) {
	if s == nil || s.repo == nil {
		return
	}
	log := &domain.AuditLog{
		UserID:    &userID,
		Action:    domain.AuditActionLogin,
		Category:  domain.AuditCategoryAuth,
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", log.Action, "user_id", userID)
	}
}

func (s *AuditService) LogGameStart(ctx context.Context, userID *int64, sessionID string, variant game.Variant, difficulty string) {
	s.Log(ctx, userID, domain.AuditActionGameStart, domain.AuditCategoryGame, map[string]interface{}{
		"session_id": sessionID,
		"variant":    variant,
		"difficulty": difficulty,
	})
}

func (s *AuditService) LogLevelCleared(ctx context.Context, userID *int64, sessionID string, level, tiles int) {
	s.Log(ctx, userID, domain.AuditActionLevelCleared, domain.AuditCategoryGame, map[string]interface{}{
		"session_id": sessionID,
		"level":      level,
		"tiles":      tiles,
	})
}

func (s *AuditService) LogGameEnd(ctx context.Context, userID *int64, sessionID string, res game.Result) {
	s.Log(ctx, userID, domain.AuditActionGameEnd, domain.AuditCategoryGame, map[string]interface{}{
		"session_id":   sessionID,
		"variant":      res.Variant,
		"mode":         res.Mode,
		"score":        res.Score,
		"elapsed_time": res.ElapsedTime,
		"won":          res.Won,
	})
}

func (s *AuditService) LogGameQuit(ctx context.Context, userID *int64, sessionID string) {
	s.Log(ctx, userID, domain.AuditActionGameQuit, domain.AuditCategoryGame, map[string]interface{}{
		"session_id": sessionID,
	})
}

// LogRoom records a room lifecycle step; the room code doubles as session id
func (s *AuditService) LogRoom(ctx context.Context, userID *int64, action, code string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["session_id"] = code
	s.Log(ctx, userID, action, domain.AuditCategoryRoom, details)
}

// GetSessionTrail returns every entry of one solo session or room, oldest first
func (s *AuditService) GetSessionTrail(ctx context.Context, sessionID string) ([]*domain.AuditLog, error) {
	if s == nil || s.repo == nil {
		return nil, nil
	}
	return s.repo.GetBySession(ctx, sessionID)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	if s == nil || s.repo == nil {
		return nil, nil
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
