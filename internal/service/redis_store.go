package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	cooldownKeyPrefix = "verification:cooldown:"
	revokedKeyPrefix  = "auth:revoked:"
)

// RedisStore holds short-lived shared state: SMS resend cooldowns and revoked
// token ids. A nil store or nil client turns every operation into a no-op.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) enabled() bool {
	return s != nil && s.Client != nil
}

// AcquireCooldown returns false if a code was sent to phone within ttl.
func (s *RedisStore) AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, error) {
	if !s.enabled() || ttl <= 0 {
		return true, nil
	}
	return s.Client.SetNX(ctx, cooldownKeyPrefix+phone, 1, ttl).Result()
}

func (s *RedisStore) ReleaseCooldown(ctx context.Context, phone string) error {
	if !s.enabled() {
		return nil
	}
	return s.Client.Del(ctx, cooldownKeyPrefix+phone).Err()
}

// Revoke marks a token id as unusable until it would have expired anyway.
func (s *RedisStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	if !s.enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.Client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !s.enabled() || jti == "" {
		return false, nil
	}
	n, err := s.Client.Exists(ctx, revokedKeyPrefix+jti).Result()
	return n > 0, err
}
