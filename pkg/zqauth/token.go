package zqauth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// =============================================================================
// 存储 key
// =============================================================================

// storageKey 生成按 appid 隔离的存储 key，形如 "{appid}_{field}"。
func (c *Client) storageKey(field string) string {
	return c.config.AppID + "_" + field
}

// =============================================================================
// Token 缓存访问器
// =============================================================================

// AccessToken 获取当前有效的 access token。
//
// 注意这不是纯读取：缓存缺失或临近过期（不足 60 秒）时会同步触发
// 刷新流程，可能产生网络调用。缓存了 token 但没有过期时间的情况
// （外部通过 WithAccessToken 提供）被视为可信，原样返回，
// 只会在收到 token 失效响应后被动刷新。
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, ok, err := c.storage.Get(ctx, c.storageKey(CacheFieldAccessToken))
	if err != nil {
		return "", err
	}

	if ok && token != "" {
		expireTime, hasExpire, err := c.ExpireTime(ctx)
		if err != nil {
			return "", err
		}
		if !hasExpire {
			// 外部提供的 token，没有过期时间记录，信任它
			return token, nil
		}
		if time.Until(expireTime) > AccessTokenExpiryMargin {
			return token, nil
		}
	}

	if err := c.RefreshAccessToken(ctx); err != nil {
		return "", err
	}

	token, _, err = c.storage.Get(ctx, c.storageKey(CacheFieldAccessToken))
	return token, err
}

// setAccessToken 写入 access token，按 AccessLifetime 重新计 TTL。
func (c *Client) setAccessToken(ctx context.Context, value string) error {
	return c.storage.Set(ctx, c.storageKey(CacheFieldAccessToken), value, c.config.AccessLifetime)
}

// ExpireTime 获取缓存的 access token 过期时间。
// ok 为 false 表示没有记录过期时间（外部提供的 token）。
func (c *Client) ExpireTime(ctx context.Context) (time.Time, bool, error) {
	value, ok, err := c.storage.Get(ctx, c.storageKey(CacheFieldExpireTime))
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("zqauth: parse cached expire_time failed: %w", err)
	}
	return t, true, nil
}

// setExpireTime 写入 access token 过期时间（RFC3339），不设 TTL。
func (c *Client) setExpireTime(ctx context.Context, t time.Time) error {
	return c.storage.Set(ctx, c.storageKey(CacheFieldExpireTime), t.Format(time.RFC3339Nano), 0)
}

// RefreshTokenValue 获取缓存的 refresh token。
// ok 为 false 表示没有缓存（登录响应未返回，或已被判定失效清除）。
func (c *Client) RefreshTokenValue(ctx context.Context) (string, bool, error) {
	value, ok, err := c.storage.Get(ctx, c.storageKey(CacheFieldRefreshToken))
	if err != nil || !ok {
		return "", false, err
	}
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// setRefreshToken 写入 refresh token，按 RefreshLifetime 重新计 TTL。
// value 为空表示显式失效：先删除 key（对合并写操作的后端，
// delete 与 set 的区别在此是有意义的），不再写入。
func (c *Client) setRefreshToken(ctx context.Context, value string) error {
	key := c.storageKey(CacheFieldRefreshToken)
	if value == "" {
		return c.storage.Delete(ctx, key)
	}
	return c.storage.Set(ctx, key, value, c.config.RefreshLifetime)
}

// =============================================================================
// 身份字段访问器
// =============================================================================

// ID 获取已认证应用的 id。
// 未缓存时会触发一次完整登录（非纯读取）。
func (c *Client) ID(ctx context.Context) (int64, error) {
	value, err := c.identityField(ctx, CacheFieldID)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("zqauth: parse cached id failed: %w", err)
	}
	return id, nil
}

// Username 获取已认证应用的 username。
// 未缓存时会触发一次完整登录（非纯读取）。
func (c *Client) Username(ctx context.Context) (string, error) {
	return c.identityField(ctx, CacheFieldUsername)
}

// Name 获取已认证应用的显示名。
// 未缓存时会触发一次完整登录（非纯读取）。
func (c *Client) Name(ctx context.Context) (string, error) {
	return c.identityField(ctx, CacheFieldName)
}

// identityField 读取身份字段，缺失时先登录再重读。
// 身份字段只在登录时写入，不设 TTL，被覆盖前一直有效。
func (c *Client) identityField(ctx context.Context, field string) (string, error) {
	value, ok, err := c.storage.Get(ctx, c.storageKey(field))
	if err != nil {
		return "", err
	}
	if ok {
		return value, nil
	}

	if err := c.login(ctx); err != nil {
		return "", err
	}

	value, _, err = c.storage.Get(ctx, c.storageKey(field))
	return value, err
}

// =============================================================================
// 登录 / 刷新
// =============================================================================

// loginResult app 登录响应 data。
type loginResult struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Access   string `json:"access"`
	// Refresh 可选，服务端可能不下发 refresh token。
	Refresh    string `json:"refresh"`
	ExpireTime string `json:"expire_time"`
}

// refreshResult token 刷新响应 data。
type refreshResult struct {
	Access     string `json:"access"`
	ExpireTime string `json:"expire_time"`
}

// RefreshAccessToken 换取新的 access token。
// 走刷新流程：有缓存的 refresh token 时刷新，否则回落到完整登录。
// 首次运行与过期后恢复共用这一条路径。
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	c.logger.Info("fetching access token", slog.String("appid", c.config.AppID))
	return c.refresh(ctx)
}

// login 调用登录端点并落盘全部会话字段。
// 登录失败 code（A0210）被收窄为 ErrAppLoginFailed——凭据不变时
// 重试无意义，此错误对本次构造是终态；其他错误原样传播。
func (c *Client) login(ctx context.Context) error {
	c.logger.Info("login using credentials", slog.String("appid", c.config.AppID))

	var result loginResult
	_, err := c.Post(ctx, PathAppLogin,
		WithoutAuth(),
		WithBody(map[string]string{
			"app_key":    c.config.AppID,
			"app_secret": c.config.Secret,
		}),
		WithRequestAutoRetry(false),
		WithResult(&result),
	)
	if err != nil {
		if errHasCode(err, CodeLoginFailed) {
			c.logger.Error("app login failed, please check your credentials",
				slog.String("appid", c.config.AppID))
			if ce, ok := AsClientError(err); ok {
				return ce.WithKind(ErrAppLoginFailed)
			}
		}
		return err
	}

	return c.storeLoginResult(ctx, &result)
}

// storeLoginResult 原子地（就调用方可见性而言：全部写完才返回）落盘登录响应。
func (c *Client) storeLoginResult(ctx context.Context, result *loginResult) error {
	expireTime, err := time.Parse(time.RFC3339Nano, result.ExpireTime)
	if err != nil {
		return fmt.Errorf("zqauth: parse login expire_time failed: %w", err)
	}

	if err := c.storage.Set(ctx, c.storageKey(CacheFieldID), strconv.FormatInt(result.ID, 10), 0); err != nil {
		return err
	}
	if err := c.storage.Set(ctx, c.storageKey(CacheFieldUsername), result.Username, 0); err != nil {
		return err
	}
	if err := c.storage.Set(ctx, c.storageKey(CacheFieldName), result.Name, 0); err != nil {
		return err
	}
	if err := c.setAccessToken(ctx, result.Access); err != nil {
		return err
	}
	if err := c.setRefreshToken(ctx, result.Refresh); err != nil {
		return err
	}
	return c.setExpireTime(ctx, expireTime)
}

// refresh 调用刷新端点更新 access token 与过期时间。
// 没有缓存的 refresh token 时直接登录；refresh token 被服务端判定
// 失效（A0221）时清除缓存后回落到登录；其他错误原样传播。
// 刷新成功只更新 access token 和过期时间——本协议中 refresh token
// 不轮换，身份字段也不变。
func (c *Client) refresh(ctx context.Context) error {
	refreshToken, ok, err := c.RefreshTokenValue(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return c.login(ctx)
	}

	c.logger.Info("refresh access token", slog.String("appid", c.config.AppID))

	var result refreshResult
	_, err = c.Post(ctx, PathTokenRefresh,
		WithoutAuth(),
		WithBody(map[string]string{"refresh": refreshToken}),
		WithRequestAutoRetry(false),
		WithResult(&result),
	)
	if err != nil {
		if errHasCode(err, CodeRefreshTokenInvalid) {
			c.logger.Info("refresh token invalid, falling back to login",
				slog.String("appid", c.config.AppID))
			if err := c.setRefreshToken(ctx, ""); err != nil {
				return err
			}
			return c.login(ctx)
		}
		return err
	}

	expireTime, err := time.Parse(time.RFC3339Nano, result.ExpireTime)
	if err != nil {
		return fmt.Errorf("zqauth: parse refresh expire_time failed: %w", err)
	}
	if err := c.setAccessToken(ctx, result.Access); err != nil {
		return err
	}
	return c.setExpireTime(ctx, expireTime)
}
