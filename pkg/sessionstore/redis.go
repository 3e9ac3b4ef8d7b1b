package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Redis 实现
// =============================================================================

// Redis 基于 Redis 的分布式存储实现。
// TTL 由 Redis 原生保证，多实例共享同一份会话数据。
type Redis struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisOption Redis 存储选项。
type RedisOption func(*Redis)

// WithKeyPrefix 设置存储 key 前缀。
// 默认 "zqauth:"，用于与同一 Redis 实例上的其他数据隔离。
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *Redis) {
		s.keyPrefix = prefix
	}
}

// NewRedis 创建 Redis 存储。
// client 必须是已初始化的 redis.UniversalClient。
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	s := &Redis{
		client:    client,
		keyPrefix: "zqauth:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// storeKey 生成实际写入 Redis 的 key。
func (s *Redis) storeKey(key string) string {
	return s.keyPrefix + key
}

// Get 获取值。redis.Nil 映射为未命中而非错误。
func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.storeKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sessionstore: redis get failed: %w", err)
	}
	return value, true, nil
}

// Set 存储值。ttl <= 0 时传 0 给 Redis，表示永不过期。
func (s *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.storeKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("sessionstore: redis set failed: %w", err)
	}
	return nil
}

// Delete 删除 key。
func (s *Redis) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.storeKey(key)).Err(); err != nil {
		return fmt.Errorf("sessionstore: redis del failed: %w", err)
	}
	return nil
}

// Client 返回底层 Redis 客户端。
func (s *Redis) Client() redis.UniversalClient {
	return s.client
}
