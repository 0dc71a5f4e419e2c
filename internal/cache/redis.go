package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Connect opens a Redis client. An empty addr or a failed ping returns nil,
// callers treat a nil client as "no cache" and keep serving.
func Connect(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
