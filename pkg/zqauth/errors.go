package zqauth

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// 配置错误
// =============================================================================

var (
	// ErrNilConfig 表示传入的配置为 nil。
	ErrNilConfig = errors.New("zqauth: nil config")

	// ErrMissingAppID 表示 AppID 未配置。
	ErrMissingAppID = errors.New("zqauth: missing appid")

	// ErrMissingSecret 表示 Secret 未配置。
	ErrMissingSecret = errors.New("zqauth: missing secret")

	// ErrInvalidBaseURL 表示 BaseURL 格式无效。
	// BaseURL 必须包含协议和主机名，例如 "https://api.cas.ziqiang.net.cn"。
	ErrInvalidBaseURL = errors.New("zqauth: invalid base url: must include scheme and host")

	// ErrInvalidTimeout 表示超时配置无效。
	ErrInvalidTimeout = errors.New("zqauth: invalid timeout")
)

// =============================================================================
// 响应错误
// =============================================================================

var (
	// ErrMalformedResponse 表示响应体缺少 code/msg/detail/data 任一字段。
	// 严格解析：缺字段视为服务端契约被破坏，不做静默容忍，也不重试。
	ErrMalformedResponse = errors.New("zqauth: malformed response envelope")

	// ErrAPIThrottled 表示请求被限流（A0512）。
	// 单独成类，便于调用方识别后自行退避（参见 RetryThrottled）。
	ErrAPIThrottled = errors.New("zqauth: api request throttled")

	// ErrAppLoginFailed 表示 app 登录凭据被拒绝（A0210）。
	// 凭据不变时重试无意义，不做自动重试。
	ErrAppLoginFailed = errors.New("zqauth: app login failed")

	// ErrThirdLoginFailed 表示 sso 换取 union id 的临时 code 无效。
	ErrThirdLoginFailed = errors.New("zqauth: third-party login failed")

	// ErrUserNotFound 表示 union id 对应的用户不存在（已解除绑定）。
	ErrUserNotFound = errors.New("zqauth: user not found")
)

// =============================================================================
// 签名错误
// =============================================================================

var (
	// ErrInvalidSignature 表示本地计算的签名与给定签名不一致。
	ErrInvalidSignature = errors.New("zqauth: invalid signature")
)

// =============================================================================
// ClientError
// =============================================================================

// ClientError 表示认证服务返回的非成功响应。
// 携带原始请求与响应对象，便于调用方诊断。
type ClientError struct {
	// Code 响应 envelope 中的状态码。
	Code ResponseCode

	// Msg 响应 envelope 中的消息。
	Msg string

	// Client 产生此错误的客户端。
	Client *Client

	// Request 原始 HTTP 请求。
	Request *http.Request

	// Response 原始 HTTP 响应。
	Response *http.Response

	// kind 领域细分哨兵（如 ErrUserNotFound）。
	// 由端点包装器通过 WithKind 设置，将通用错误收窄为领域错误。
	kind error
}

func (e *ClientError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("zqauth: api error: code=%s, msg=%s", e.Code, e.Msg)
	}
	return fmt.Sprintf("zqauth: api error: code=%s (%s)", e.Code, e.Code.Detail())
}

// Is 实现 errors.Is 匹配。
// 限流哨兵按 code 匹配；领域哨兵按 WithKind 设置的 kind 匹配。
// 注意：token-invalid 与 refresh-token-invalid 在状态表中同为 A0221，
// 恢复逻辑在各自调用点依据上下文分流，这里不做二者的区分。
func (e *ClientError) Is(target error) bool {
	if e.kind != nil && target == e.kind {
		return true
	}
	return target == ErrAPIThrottled && e.Code == CodeAPIThrottled
}

// WithKind 返回设置了领域哨兵的错误副本。
// 端点包装器用它把通用的"资源不存在"收窄为"用户不存在"等领域错误，
// 同时保留原始的 code/请求/响应诊断信息。
func (e *ClientError) WithKind(kind error) *ClientError {
	clone := *e
	clone.kind = kind
	return &clone
}

// AsClientError 提取错误链中的 *ClientError。
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// errHasCode 判断错误是否为携带指定 code 的 ClientError。
// 登录与刷新流程用它在各自调用点识别可恢复的失败。
func errHasCode(err error, code ResponseCode) bool {
	ce, ok := AsClientError(err)
	return ok && ce.Code == code
}
