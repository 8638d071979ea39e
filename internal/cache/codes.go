package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound is returned when no confirmation code is stored for a
// username, typically because it expired or was already consumed.
var ErrCodeNotFound = errors.New("confirmation code not found")

// CodeStore holds pending confirmation-code hashes keyed by username.
// Codes live until their TTL runs out or the token endpoint consumes them.
type CodeStore interface {
	Set(ctx context.Context, username, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, username string) (string, error)
	Delete(ctx context.Context, username string) error
	Close() error
}

type redisCodeStore struct {
	client *redis.Client
}

// NewRedisCodeStore creates a code store from a Redis URL
// (e.g. redis://:pass@host:6379/0) and fail-fasts on an unreachable server.
func NewRedisCodeStore(redisURL string) (CodeStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCodeStore{client: rdb}, nil
}

func (s *redisCodeStore) key(username string) string {
	return "auth:code:" + username
}

func (s *redisCodeStore) Set(ctx context.Context, username, codeHash string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(username), codeHash, ttl).Err()
}

func (s *redisCodeStore) Get(ctx context.Context, username string) (string, error) {
	val, err := s.client.Get(ctx, s.key(username)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *redisCodeStore) Delete(ctx context.Context, username string) error {
	return s.client.Del(ctx, s.key(username)).Err()
}

func (s *redisCodeStore) Close() error {
	return s.client.Close()
}
