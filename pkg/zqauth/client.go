package zqauth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ziqiangstudio/zqauth-go/pkg/sessionstore"
)

// =============================================================================
// Client
// =============================================================================

// Client 自强 Studio 认证服务（ZqAuth）客户端。
//
// 客户端持有 app 凭据，自动维护 access token 的获取、缓存与刷新，
// 业务端点通过 App 字段访问：
//
//	client, err := zqauth.NewClient(ctx, &zqauth.Config{
//		AppID:  os.Getenv("ZQAUTH_APP_KEY"),
//		Secret: os.Getenv("ZQAUTH_APP_SECRET"),
//	})
//	...
//	unionID, err := client.App.SSO(ctx, code)
//
// Client 本身不启动后台 goroutine，token 刷新在请求路径上同步完成。
// 并发调用是安全的：存储后端自身保证读写安全，重复刷新只是多换
// 一次 token，结果仍然有效。
type Client struct {
	config  *Config
	options *Options
	http    *http.Client
	storage sessionstore.Store
	logger  *slog.Logger

	// App 业务端点组。
	App *AppAPI
}

// NewClient 创建 zqauth 客户端。
//
// 默认构造即同步换取 access token（有缓存的 refresh token 则刷新，
// 否则用凭据登录），凭据错误在构造阶段 fail-fast 暴露；
// 通过 WithSkipInitialRefresh 可推迟到首次请求。
func NewClient(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	options := applyOptions(opts)

	storage := options.Storage
	if storage == nil {
		storage = sessionstore.NewMemory()
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		config:  cfg,
		options: options,
		http:    httpClient,
		storage: storage,
		logger:  options.Logger,
	}
	c.App = newAppAPI(c)

	// 外部提供的 token 直接入缓存，不记录过期时间：
	// 它被视为可信，只在收到 token 失效响应后被动刷新
	if options.AccessToken != "" {
		if err := c.setAccessToken(ctx, options.AccessToken); err != nil {
			return nil, err
		}
		return c, nil
	}

	if !options.SkipInitialRefresh {
		if err := c.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Config 返回客户端配置的拷贝。
func (c *Client) Config() *Config {
	return c.config.Clone()
}

// Storage 返回客户端使用的会话存储后端。
func (c *Client) Storage() sessionstore.Store {
	return c.storage
}
