package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jooksuklubid/runclubs/internal/adapters/database/redis/codes"
	"github.com/jooksuklubid/runclubs/internal/adapters/database/redis/revoked"
)

type Client struct {
	Codes   *codes.Storage
	Revoked *revoked.Storage

	clients []*redis.Client
}

type Options struct {
	Host     string
	Port     string
	Password string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	codeStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       1,
	})
	if err := codeStorage.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping codes storage: %w", err)
	}

	revokedStorage := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       2,
	})
	if err := revokedStorage.Ping(ctx).Err(); err != nil {
		_ = codeStorage.Close()
		return nil, fmt.Errorf("failed to ping revoked tokens storage: %w", err)
	}

	return &Client{
		Codes:   codes.NewStorage(codeStorage),
		Revoked: revoked.NewStorage(revokedStorage),
		clients: []*redis.Client{codeStorage, revokedStorage},
	}, nil
}

func (c *Client) Close() error {
	var firstErr error
	for _, client := range c.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
