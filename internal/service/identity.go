package service

import (
	"context"
	"errors"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/repository"
)

var (
	ErrUserInactive = errors.New("user is inactive")
	ErrUnknownUser  = errors.New("unknown user")
)

// UserStore is the read side of the users table
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Identity is the authenticated caller as the game sees it
type Identity struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Verified    bool   `json:"verified"`
}

type IdentityService struct {
	users UserStore
}

func NewIdentityService(users UserStore) *IdentityService {
	return &IdentityService{users: users}
}

// Identify resolves a token subject to a user; inactive accounts are refused
func (s *IdentityService) Identify(ctx context.Context, userID int64) (*Identity, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	return &Identity{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.Name(),
		Verified:    u.IsVerified,
	}, nil
}

// Authenticate parses a bearer token and resolves its user
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	userID, err := ParseJWT(token)
	if err != nil {
		return nil, err
	}
	return s.Identify(ctx, userID)
}
