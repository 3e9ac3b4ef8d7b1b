package zqauth

import (
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// 默认值
// =============================================================================

const (
	// DefaultBaseURL 自强 Studio 认证服务地址。
	DefaultBaseURL = "https://api.cas.ziqiang.net.cn"

	// DefaultAccessLifetime access token 缓存有效期（1 天）。
	DefaultAccessLifetime = 24 * time.Hour

	// DefaultRefreshLifetime refresh token 缓存有效期（10 天）。
	DefaultRefreshLifetime = 10 * 24 * time.Hour

	// AccessTokenExpiryMargin access token 临近过期的安全边际。
	// 缓存的过期时间距现在不足此值时，读取 access token 会先触发刷新。
	AccessTokenExpiryMargin = 60 * time.Second
)

// =============================================================================
// API 路由
// =============================================================================

//nolint:gosec // G101: 这些是 API 路径常量，不是凭据
const (
	// PathAppLogin app 登录路径。
	PathAppLogin = "/auth/apps/"

	// PathTokenRefresh token 刷新路径。
	PathTokenRefresh = "/auth/refresh/"

	// PathTest 连通性测试路径。
	PathTest = "/"

	// PathSSOUnionID sso union id 换取路径。
	PathSSOUnionID = "/sso/union-id/"
)

// =============================================================================
// 缓存字段
// =============================================================================

const (
	// CacheFieldAccessToken access token 缓存字段。
	CacheFieldAccessToken = "access_token"

	// CacheFieldExpireTime access token 过期时间缓存字段。
	CacheFieldExpireTime = "access_token_expire_time"

	// CacheFieldRefreshToken refresh token 缓存字段。
	CacheFieldRefreshToken = "refresh_token"

	// CacheFieldID app id 缓存字段。
	CacheFieldID = "id"

	// CacheFieldUsername app username 缓存字段。
	CacheFieldUsername = "username"

	// CacheFieldName app 显示名缓存字段。
	CacheFieldName = "name"
)

// =============================================================================
// Config 配置结构
// =============================================================================

// Config 定义 zqauth 客户端配置。
type Config struct {
	// AppID 应用标识 APP_KEY_ID（必填）。
	AppID string

	// Secret 应用密钥 APP_KEY_SECRET（必填）。
	Secret string

	// BaseURL 认证服务地址。
	// 默认 DefaultBaseURL，尾部斜杠会被去除以避免拼接出双斜杠。
	BaseURL string

	// Timeout 请求超时时间。
	// 为 0 时不设置客户端级超时，依赖调用方的 context。
	Timeout time.Duration

	// AccessLifetime access token 写入存储时使用的 TTL。
	// 默认 1 天。设为负值表示不设置 TTL。
	AccessLifetime time.Duration

	// RefreshLifetime refresh token 写入存储时使用的 TTL。
	// 默认 10 天。设为负值表示不设置 TTL。
	RefreshLifetime time.Duration
}

// Validate 验证配置有效性。
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	if c.AppID == "" {
		return ErrMissingAppID
	}
	if c.Secret == "" {
		return ErrMissingSecret
	}

	if err := c.validateBaseURL(); err != nil {
		return err
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// validateBaseURL 校验 BaseURL 格式。
// 无 scheme 的地址在拼接 API 路径后无法正确请求，
// fail-fast 在配置阶段暴露问题，而非在运行期请求失败。
func (c *Config) validateBaseURL() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return nil // ApplyDefaults 会填入 DefaultBaseURL
	}

	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	return nil
}

// ApplyDefaults 应用默认值。
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if c.AccessLifetime == 0 {
		c.AccessLifetime = DefaultAccessLifetime
	}
	if c.RefreshLifetime == 0 {
		c.RefreshLifetime = DefaultRefreshLifetime
	}
}

// Clone 创建配置的拷贝，避免外部修改。
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
