package zqauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// =============================================================================
// 公开请求方法
// =============================================================================

// Get 发起 GET 请求。
// path 为相对路径时与 base URL 拼接，绝对 URL 原样使用。
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, opts...)
}

// Post 发起 POST 请求。
func (c *Client) Post(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, opts...)
}

// Request 发起任意方法的请求，走完整的 envelope 解析与 token 重试流程。
//
// 一次逻辑调用至多发出两次 HTTP 请求：首次请求返回 token 失效
// （A0221）且自动重试开启时，同步刷新 token 后原样重发一次，
// 重发时重试开关强制关闭，保证不会进入刷新循环。
func (c *Client) Request(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	ro := defaultRequestOptions()
	for _, opt := range opts {
		opt(ro)
	}

	retry := c.options.AutoRetry
	if ro.autoRetry != nil {
		retry = *ro.autoRetry
	}

	resp, err := c.do(ctx, method, path, ro)
	if err != nil {
		return nil, err
	}

	if retry && resp.Code == CodeTokenInvalid {
		c.logger.Warn("access token invalid, refresh and retry",
			slog.String("appid", c.config.AppID),
			slog.String("method", method),
			slog.String("path", path),
		)
		if err := c.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}
		resp, err = c.do(ctx, method, path, ro)
		if err != nil {
			return nil, err
		}
	}

	return c.finish(resp, ro)
}

// =============================================================================
// 请求执行
// =============================================================================

// do 执行单次 HTTP 请求并解析 envelope。
// 不做分类分发，调用方根据 resp.Code 决定后续动作。
func (c *Client) do(ctx context.Context, method, path string, ro *requestOptions) (*Response, error) {
	if ro.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ro.timeout)
		defer cancel()
	}

	target, err := c.resolveURL(path, ro)
	if err != nil {
		return nil, err
	}

	body, contentType, err := buildBody(ro.body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("zqauth: build request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if ro.auth {
		token, err := c.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("url", target),
	)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zqauth: %s %s failed: %w", method, target, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	resp, err := ParseResponse(httpResp, c)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("api response",
		slog.String("url", target),
		slog.String("code", string(resp.Code)),
	)
	return resp, nil
}

// finish 处理最终的 envelope：失败转错误，成功解码 data。
func (c *Client) finish(resp *Response, ro *requestOptions) (*Response, error) {
	if err := resp.Err(); err != nil {
		return nil, err
	}

	if ro.result != nil && len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, ro.result); err != nil {
			return nil, fmt.Errorf("zqauth: decode response data failed: %w", err)
		}
	}
	return resp, nil
}

// resolveURL 解析请求目标地址。
// 绝对 URL（含 scheme）原样使用，其余与 base URL 拼接；
// base 尾斜杠与 path 头斜杠在拼接时归一，避免出现双斜杠。
func (c *Client) resolveURL(path string, ro *requestOptions) (string, error) {
	target := path
	if !isAbsoluteURL(path) {
		base := c.config.BaseURL
		if ro.baseURL != "" {
			base = strings.TrimSuffix(ro.baseURL, "/")
		}
		target = base + "/" + strings.TrimPrefix(path, "/")
	}

	if len(ro.params) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("zqauth: invalid request url %q: %w", target, err)
	}
	q := u.Query()
	for k, v := range ro.params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// isAbsoluteURL 判断 path 是否为带 scheme 的绝对地址。
func isAbsoluteURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// buildBody 构建请求体。
// string / []byte / io.Reader 原样发送，其余类型 JSON 序列化。
func buildBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return strings.NewReader(v), "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case io.Reader:
		return v, "", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("zqauth: marshal request body failed: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
