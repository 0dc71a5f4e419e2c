package db

import (
	"context"
	"fmt"
	"time"

	"github.com/tysonsiruno/minesweeper-multiplayer/internal/logger"
	"github.com/tysonsiruno/minesweeper-multiplayer/internal/retry"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connectPolicy waits out a database that starts together with the app
var connectPolicy = retry.Policy{
	MaxAttempts:     6,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	Multiplier:      2,
}

// Open creates the pool and pings it until it answers or the attempts run out
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	err = retry.Do(ctx, connectPolicy, pool.Ping, func(err error, wait time.Duration) {
		logger.Warn("database not ready, retrying", "error", err, "wait", wait)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func Connect(dsn string) *pgxpool.Pool {
	db, err := Open(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to connect database", "error", err)
	}

	logger.Info("database connected")
	return db
}
