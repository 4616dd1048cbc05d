package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	accessKeySuffix  = "accessToken"
	refreshKeySuffix = "refreshToken"
)

// RedisStore persists the pair in Redis under two keys written in one
// transaction. It suits backend-for-frontend deployments where several
// console instances share one session.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store writing under "<prefix>:accessToken" and
// "<prefix>:refreshToken". An empty prefix defaults to "careauth:session".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "careauth:session"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(suffix string) string {
	return s.prefix + ":" + suffix
}

func (s *RedisStore) Load(ctx context.Context) (Pair, error) {
	vals, err := s.redis.MGet(ctx, s.key(accessKeySuffix), s.key(refreshKeySuffix)).Result()
	if err != nil {
		return Pair{}, fmt.Errorf("tokenstore: redis mget: %w", err)
	}

	var pair Pair
	if v, ok := vals[0].(string); ok {
		pair.AccessToken = v
	}
	if v, ok := vals[1].(string); ok {
		pair.RefreshToken = v
	}
	if !pair.Valid() {
		// A half pair means an interrupted save; sweep it so the next Load
		// is clean.
		if pair.AccessToken != "" || pair.RefreshToken != "" {
			_ = s.Clear(ctx)
		}
		return Pair{}, ErrNotFound
	}
	return pair, nil
}

func (s *RedisStore) Save(ctx context.Context, pair Pair) error {
	if !pair.Valid() {
		return errIncomplete
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(accessKeySuffix), pair.AccessToken, 0)
		pipe.Set(ctx, s.key(refreshKeySuffix), pair.RefreshToken, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("tokenstore: redis save: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.redis.Del(ctx, s.key(accessKeySuffix), s.key(refreshKeySuffix)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("tokenstore: redis clear: %w", err)
	}
	return nil
}
