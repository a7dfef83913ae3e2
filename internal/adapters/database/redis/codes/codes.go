package codes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jooksuklubid/runclubs/internal/domain/common/errorz"
)

// Storage keeps one-time login codes keyed by email address.
// Failed guesses and resend throttles live in sibling keys of the same email.
type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func key(email string) string {
	return fmt.Sprintf("code:%s", normalize(email))
}

func attemptsKey(email string) string {
	return fmt.Sprintf("code-attempts:%s", normalize(email))
}

func throttleKey(email string) string {
	return fmt.Sprintf("code-throttle:%s", normalize(email))
}

// Get returns the pending code of email, or errorz.ErrInvalidCode when none is stored.
func (s *Storage) Get(ctx context.Context, email string) (string, error) {
	code, err := s.redis.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errorz.ErrInvalidCode
	}
	return code, err
}

// Set replaces the pending code of email and resets its failed attempts.
func (s *Storage) Set(ctx context.Context, email, code string, expiration time.Duration) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(email), code, expiration)
		pipe.Del(ctx, attemptsKey(email))
		return nil
	})
	return err
}

// Fail records a wrong guess for email and returns the number of failures so far.
// The counter expires together with the code it guards.
func (s *Storage) Fail(ctx context.Context, email string, expiration time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey(email))
		pipe.Expire(ctx, attemptsKey(email), expiration)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Throttle reports whether a new code may be sent to email, blocking further sends for interval.
func (s *Storage) Throttle(ctx context.Context, email string, interval time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, throttleKey(email), 1, interval).Result()
}

func (s *Storage) Clear(ctx context.Context, email string) error {
	return s.redis.Del(ctx, key(email), attemptsKey(email)).Err()
}
