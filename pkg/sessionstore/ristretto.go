package sessionstore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// =============================================================================
// Ristretto 实现
// =============================================================================

// Ristretto 基于 ristretto 的本地高性能存储实现。
// 适合单实例部署中替代 Memory 承载大量会话数据的场景。
//
// 重要：ristretto 写入是异步的，Set 之后立即 Get 可能读不到。
// 需要写后立读（如测试）时调用 Wait。受容量淘汰影响，
// 不应将其用作正确性依赖的唯一存储（参见 doc.go 的 TTL 语义说明）。
type Ristretto struct {
	cache  *ristretto.Cache[string, string]
	owned  bool
	closed atomic.Bool
}

// RistrettoOptions Ristretto 存储配置。
type RistrettoOptions struct {
	// NumCounters 频率统计计数器数量，建议为预期 key 数量的 10 倍。
	// 默认 1e5。
	NumCounters int64

	// MaxCost 缓存最大容量（按条目 cost 计）。
	// 默认 1e4。
	MaxCost int64

	// BufferItems 写入缓冲区大小。默认 64。
	BufferItems int64
}

// RistrettoOption 定义配置 Ristretto 存储的函数类型。
type RistrettoOption func(*RistrettoOptions)

// defaultRistrettoOptions 返回默认配置。
// 会话数据条目少（每个 appid 六个 key），默认值远小于通用缓存场景。
func defaultRistrettoOptions() *RistrettoOptions {
	return &RistrettoOptions{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	}
}

// WithRistrettoNumCounters 设置计数器数量。n <= 0 时忽略。
func WithRistrettoNumCounters(n int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if n > 0 {
			o.NumCounters = n
		}
	}
}

// WithRistrettoMaxCost 设置最大容量。cost <= 0 时忽略。
func WithRistrettoMaxCost(cost int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if cost > 0 {
			o.MaxCost = cost
		}
	}
}

// NewRistretto 创建 Ristretto 存储。
func NewRistretto(opts ...RistrettoOption) (*Ristretto, error) {
	options := defaultRistrettoOptions()
	for _, opt := range opts {
		opt(options)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: options.NumCounters,
		MaxCost:     options.MaxCost,
		BufferItems: options.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("sessionstore: create ristretto cache: %w", err)
	}

	return &Ristretto{cache: cache, owned: true}, nil
}

// NewRistrettoFromClient 从已有的 ristretto.Cache 创建存储，复用已有实例。
// 调用方保留底层实例的生命周期管理责任。
func NewRistrettoFromClient(cache *ristretto.Cache[string, string]) (*Ristretto, error) {
	if cache == nil {
		return nil, ErrNilClient
	}
	return &Ristretto{cache: cache, owned: false}, nil
}

// Get 获取值。ristretto 原生处理 TTL 过期。
func (s *Ristretto) Get(_ context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	value, ok := s.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	return value, true, nil
}

// Set 存储值。每个条目 cost 固定为 1。
func (s *Ristretto) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if ttl > 0 {
		s.cache.SetWithTTL(key, value, 1, ttl)
	} else {
		s.cache.Set(key, value, 1)
	}
	return nil
}

// Delete 删除 key。
func (s *Ristretto) Delete(_ context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.cache.Del(key)
	return nil
}

// Wait 等待所有缓冲的写入完成。
// ristretto 使用异步写入，写后立读前必须调用。
func (s *Ristretto) Wait() {
	s.cache.Wait()
}

// Close 关闭存储。仅在实例由 NewRistretto 创建时关闭底层缓存。
func (s *Ristretto) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if s.owned {
		s.cache.Close()
	}
	return nil
}
