package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/db"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/domain"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/repository"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("username", "testuser", "username to create or reuse")
	display := flag.String("display", "Tester", "display name")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init("info", false)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	u, err := repo.GetByUsername(ctx, *username)
	switch {
	case err == nil:
		logger.Info("user already exists", "id", u.ID)
		if !u.IsVerified {
			if err := repo.SetVerified(ctx, u.ID, true); err != nil {
				logger.Fatal("verify user failed", "error", err)
			}
		}
	case errors.Is(err, repository.ErrUserNotFound):
		u = &domain.User{Username: *username, DisplayName: *display, IsVerified: true}
		if err := repo.Create(ctx, u); err != nil {
			logger.Fatal("create user failed", "error", err)
		}
		logger.Info("user created", "id", u.ID)
	default:
		logger.Fatal("lookup user failed", "error", err)
	}

	service.InitJWT(secret)
	token, err := service.GenerateJWT(u.ID, u.Username)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
