package zqauth

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// =============================================================================
// 限流退避
// =============================================================================

// 限流重试默认参数。
const (
	// DefaultThrottleAttempts 总尝试次数（含首次）。
	DefaultThrottleAttempts = 3

	// DefaultThrottleDelay 首次重试前的基准延迟，之后指数退避。
	DefaultThrottleDelay = time.Second
)

// RetryThrottled 执行 fn，遇到限流错误（ErrAPIThrottled）时指数退避后重试。
//
// 限流退避是调用方策略，不内建在请求路径上：核心请求流程只保留
// token 失效后的一次重试，其余错误一律直接返回。需要对限流做
// 整体退避的调用方用本函数包一层：
//
//	info, err := zqauth.RetryThrottled(ctx, func(ctx context.Context) (*zqauth.AppInfo, error) {
//	    return client.App.Info(ctx)
//	})
//
// 注意 fn 是整个逻辑调用：重试时 token 刷新等内部流程会重新走一遍。
// 非限流错误不重试，原样返回。
func RetryThrottled[T any](ctx context.Context, fn func(ctx context.Context) (T, error), opts ...retry.Option) (T, error) {
	base := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(DefaultThrottleAttempts),
		retry.Delay(DefaultThrottleDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrAPIThrottled)
		}),
	}
	return retry.NewWithData[T](append(base, opts...)...).Do(func() (T, error) {
		return fn(ctx)
	})
}
