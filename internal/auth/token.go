package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const tokenKey = "auth:token"

// TokenStore persists the bearer token across terminal restarts, the
// daemon's stand-in for the browser's local storage.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// RedisTokenStore keeps the token in Redis. It also satisfies the upstream
// client's TokenSource.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore constructs the store.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// Token returns the stored token, or "" when the terminal is signed out.
func (s *RedisTokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, tokenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("auth: read token: %w", err)
	}
	return token, nil
}

// Save stores the token without expiry; the server decides token lifetime.
func (s *RedisTokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, tokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("auth: save token: %w", err)
	}
	return nil
}

// Clear drops the stored token.
func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("auth: clear token: %w", err)
	}
	return nil
}
