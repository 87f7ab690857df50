package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Open creates a Redis client and pings it to validate the connection.
func Open(ctx context.Context, host string, port int, password string, db int) (*redis.Client, error) {
	if host == "" {
		return nil, fmt.Errorf("empty redis host")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
