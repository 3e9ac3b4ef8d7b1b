package zqauth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ziqiangstudio/zqauth-go/pkg/sessionstore"
)

// =============================================================================
// Options 结构
// =============================================================================

// Options 定义客户端的可选配置。
type Options struct {
	// Storage 会话存储后端。
	// 默认使用进程内的 sessionstore.Memory。
	Storage sessionstore.Store

	// HTTPClient 自定义 HTTP 客户端。
	// 如果不设置，将根据 Config.Timeout 自动创建。
	HTTPClient *http.Client

	// Logger 日志记录器。
	// 如果不设置，使用 slog.Default()。
	Logger *slog.Logger

	// AccessToken 外部提供的 access token。
	// 设置后写入存储但不记录过期时间：该 token 被视为可信，
	// 只会在收到 token 失效响应后被动刷新，不做主动过期检查。
	AccessToken string

	// AutoRetry token 过期时是否自动刷新后重试（每个逻辑调用至多一次）。
	// 默认开启。
	AutoRetry bool

	// SkipInitialRefresh 跳过构造时的刷新/登录。
	// 默认构造即尝试换取 access token，fail-fast 暴露凭据问题；
	// 测试或延迟登录场景可跳过。
	SkipInitialRefresh bool
}

// Option 定义配置客户端的函数类型。
type Option func(*Options)

// defaultOptions 返回默认的 Options。
func defaultOptions() *Options {
	return &Options{
		Logger:    slog.Default(),
		AutoRetry: true,
	}
}

// applyOptions 应用所有 Option。
func applyOptions(opts []Option) *Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// =============================================================================
// Option 函数
// =============================================================================

// WithStorage 设置会话存储后端。
// 多实例共享 token 时使用 sessionstore.Redis 等分布式实现。
func WithStorage(store sessionstore.Store) Option {
	return func(o *Options) {
		if store != nil {
			o.Storage = store
		}
	}
}

// WithHTTPClient 设置自定义 HTTP 客户端。
// 注入后 Config.Timeout 不再生效，超时策略由调用方的 Client 自行保证。
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		if client != nil {
			o.HTTPClient = client
		}
	}
}

// WithLogger 设置日志记录器。
// 传入 nil 时使用 slog.Default()。
// 如需禁用日志，可传入 slog.New(slog.NewTextHandler(io.Discard, nil))。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithAccessToken 设置外部提供的 access token。
func WithAccessToken(token string) Option {
	return func(o *Options) {
		o.AccessToken = token
	}
}

// WithAutoRetry 设置 token 过期时是否自动刷新后重试。
func WithAutoRetry(enable bool) Option {
	return func(o *Options) {
		o.AutoRetry = enable
	}
}

// WithSkipInitialRefresh 跳过构造时的刷新/登录。
func WithSkipInitialRefresh(skip bool) Option {
	return func(o *Options) {
		o.SkipInitialRefresh = skip
	}
}

// =============================================================================
// 请求级选项
// =============================================================================

// requestOptions 单次请求的参数。
type requestOptions struct {
	auth    bool
	params  map[string]string
	body    any
	timeout time.Duration
	result  any
	// autoRetry 为 nil 时沿用客户端级 AutoRetry 设置。
	autoRetry *bool
	// baseURL 覆盖客户端级 BaseURL，供端点组跨主机请求使用。
	baseURL string
}

// RequestOption 定义单次请求的选项函数类型。
type RequestOption func(*requestOptions)

// defaultRequestOptions 返回单次请求的默认参数。
func defaultRequestOptions() *requestOptions {
	return &requestOptions{auth: true}
}

// WithoutAuth 不携带 Authorization 头（登录、刷新等匿名端点使用）。
func WithoutAuth() RequestOption {
	return func(o *requestOptions) {
		o.auth = false
	}
}

// WithParams 设置 query 参数。
func WithParams(params map[string]string) RequestOption {
	return func(o *requestOptions) {
		o.params = params
	}
}

// WithBody 设置请求体。
// 支持 string、[]byte、io.Reader 原样发送，其余类型 JSON 序列化。
func WithBody(body any) RequestOption {
	return func(o *requestOptions) {
		o.body = body
	}
}

// WithRequestTimeout 覆盖本次请求的超时时间。
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithResult 设置响应 data 的解码目标。
// 请求成功后 data 会被 JSON 反序列化到 result 指向的值。
func WithResult(result any) RequestOption {
	return func(o *requestOptions) {
		o.result = result
	}
}

// WithRequestAutoRetry 覆盖本次请求的自动重试设置。
func WithRequestAutoRetry(enable bool) RequestOption {
	return func(o *requestOptions) {
		o.autoRetry = &enable
	}
}

// WithBaseURL 覆盖本次请求的 base URL。
func WithBaseURL(baseURL string) RequestOption {
	return func(o *requestOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}
