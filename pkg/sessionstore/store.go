package sessionstore

import (
	"context"
	"time"
)

// =============================================================================
// Store 接口
// =============================================================================

// Store 定义会话存储接口。
// 实现需保证：key 缺失或已过期时返回 (_, false, nil)，而非错误。
type Store interface {
	// Get 获取 key 对应的值。
	// ok 为 false 表示 key 不存在或已过期。
	// err 仅承载后端故障（如网络错误），不用于表达缺失。
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 存储值。
	// ttl > 0 时，值在 ttl 之后不可读；ttl <= 0 表示永不过期。
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete 删除 key。key 不存在时为空操作，不返回错误。
	Delete(ctx context.Context, key string) error
}
