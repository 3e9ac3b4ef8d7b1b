package zqauth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseSize 最大响应体大小（10MB），防止异常响应导致内存溢出。
const maxResponseSize = 10 * 1024 * 1024

// =============================================================================
// 状态码枚举
// =============================================================================

// ResponseCode 认证服务 envelope 状态码。
// 5 位字符串，与 HTTP 状态码正交："00000" 表示成功，
// A 开头为用户端错误，B 开头为系统错误，C 开头为第三方服务错误。
type ResponseCode string

const (
	CodeSuccess               ResponseCode = "00000"
	CodeClientError           ResponseCode = "A0000"
	CodeLoginFailed           ResponseCode = "A0210"
	CodeUsernameNotExist      ResponseCode = "A0211"
	CodePasswordWrong         ResponseCode = "A0212"
	CodeLoginFailedExceed     ResponseCode = "A0213"
	CodePhoneNotExist         ResponseCode = "A0214"
	CodeLoginExpired          ResponseCode = "A0220"
	CodeTokenInvalid          ResponseCode = "A0221"
	CodeThirdLoginFailed      ResponseCode = "A0230"
	CodeThirdLoginCaptchaErr  ResponseCode = "A0232"
	CodeThirdLoginExpired     ResponseCode = "A0233"
	CodePermissionError       ResponseCode = "A0300"
	CodeNotLogin              ResponseCode = "A0310"
	CodeNotActive             ResponseCode = "A0311"
	CodePermissionDenied      ResponseCode = "A0312"
	CodeServiceNotAvailable   ResponseCode = "A0313"
	CodeUserBlocked           ResponseCode = "A0320"
	CodeUserFrozen            ResponseCode = "A0321"
	CodeIPInvalid             ResponseCode = "A0322"
	CodeParamError            ResponseCode = "A0400"
	CodeJSONParseFailed       ResponseCode = "A0410"
	CodeParamEmpty            ResponseCode = "A0420"
	CodeParamValidationFailed ResponseCode = "A0430"
	CodeRequestError          ResponseCode = "A0500"
	CodeAPINotFound           ResponseCode = "A0510"
	CodeMethodNotAllowed      ResponseCode = "A0511"
	CodeAPIThrottled          ResponseCode = "A0512"
	CodeHeaderNotAcceptable   ResponseCode = "A0513"
	CodeResourceNotFound      ResponseCode = "A0514"
	CodeUploadError           ResponseCode = "A0600"
	CodeUnsupportedMediaType  ResponseCode = "A0610"
	CodeUnsupportedMediaSize  ResponseCode = "A0613"
	CodeVersionError          ResponseCode = "A0700"
	CodeAppVersionError       ResponseCode = "A0710"
	CodeAPIVersionError       ResponseCode = "A0720"
	CodeServerError           ResponseCode = "B0000"
	CodeServerTimeout         ResponseCode = "B0100"
	CodeServerResourceError   ResponseCode = "B0200"
	CodeThirdServiceError     ResponseCode = "C0000"
	CodeMiddlewareError       ResponseCode = "C0100"
	CodeThirdServiceTimeout   ResponseCode = "C0200"
	CodeDatabaseError         ResponseCode = "C0300"
	CodeCacheError            ResponseCode = "C0400"
	CodeNotificationError     ResponseCode = "C0500"

	// CodeRefreshTokenInvalid 与 CodeTokenInvalid 在服务端状态表中同为 A0221。
	// 刷新流程在自己的调用点用它识别 refresh token 失效，不依赖二者取值不同。
	CodeRefreshTokenInvalid ResponseCode = "A0221"
)

// codeInfo 状态码元数据。
type codeInfo struct {
	// detail 状态说明。
	detail string
	// status 对应的 HTTP 状态码提示。仅供展示，分类始终按 envelope code。
	status int
}

// codeTable 状态码表，与服务端状态表保持一致。
var codeTable = map[ResponseCode]codeInfo{
	CodeSuccess:               {"", http.StatusOK},
	CodeClientError:           {"用户端错误", http.StatusBadRequest},
	CodeLoginFailed:           {"用户登录失败", http.StatusBadRequest},
	CodeUsernameNotExist:      {"用户名不存在", http.StatusBadRequest},
	CodePasswordWrong:         {"用户密码错误", http.StatusBadRequest},
	CodeLoginFailedExceed:     {"用户输入密码次数超限", http.StatusBadRequest},
	CodePhoneNotExist:         {"手机号不存在", http.StatusBadRequest},
	CodeLoginExpired:          {"用户登录已过期", http.StatusUnauthorized},
	CodeTokenInvalid:          {"token 无效或已过期", http.StatusUnauthorized},
	CodeThirdLoginFailed:      {"用户第三方登录失败", http.StatusUnauthorized},
	CodeThirdLoginCaptchaErr:  {"用户第三方登录验证码错误", http.StatusUnauthorized},
	CodeThirdLoginExpired:     {"用户第三方登录已过期", http.StatusUnauthorized},
	CodePermissionError:       {"用户权限异常", http.StatusForbidden},
	CodeNotLogin:              {"用户未登录", http.StatusUnauthorized},
	CodeNotActive:             {"用户未激活", http.StatusForbidden},
	CodePermissionDenied:      {"用户无权限", http.StatusForbidden},
	CodeServiceNotAvailable:   {"不在服务时段", http.StatusForbidden},
	CodeUserBlocked:           {"黑名单用户", http.StatusForbidden},
	CodeUserFrozen:            {"账号被冻结", http.StatusForbidden},
	CodeIPInvalid:             {"非法 IP 地址", http.StatusUnauthorized},
	CodeParamError:            {"用户请求参数错误", http.StatusBadRequest},
	CodeJSONParseFailed:       {"请求 JSON 解析错误", http.StatusBadRequest},
	CodeParamEmpty:            {"请求必填参数为空", http.StatusBadRequest},
	CodeParamValidationFailed: {"请求参数值校验失败", http.StatusBadRequest},
	CodeRequestError:          {"用户请求服务异常", http.StatusBadRequest},
	CodeAPINotFound:           {"请求接口不存在", http.StatusNotFound},
	CodeMethodNotAllowed:      {"请求方法不允许", http.StatusMethodNotAllowed},
	CodeAPIThrottled:          {"请求次数超出限制", http.StatusTooManyRequests},
	CodeHeaderNotAcceptable:   {"请求头无法满足", http.StatusNotAcceptable},
	CodeResourceNotFound:      {"请求资源不存在", http.StatusNotFound},
	CodeUploadError:           {"用户上传文件异常", http.StatusBadRequest},
	CodeUnsupportedMediaType:  {"用户上传文件类型不支持", http.StatusBadRequest},
	CodeUnsupportedMediaSize:  {"用户上传文件大小错误", http.StatusBadRequest},
	CodeVersionError:          {"用户版本异常", http.StatusBadRequest},
	CodeAppVersionError:       {"用户应用安装版本不匹配", http.StatusBadRequest},
	CodeAPIVersionError:       {"用户 API 请求版本不匹配", http.StatusBadRequest},
	CodeServerError:           {"系统执行出错", http.StatusInternalServerError},
	CodeServerTimeout:         {"系统执行超时", http.StatusInternalServerError},
	CodeServerResourceError:   {"系统资源异常", http.StatusInternalServerError},
	CodeThirdServiceError:     {"调用第三方服务出错", http.StatusInternalServerError},
	CodeMiddlewareError:       {"中间件服务出错", http.StatusInternalServerError},
	CodeThirdServiceTimeout:   {"第三方系统执行超时", http.StatusInternalServerError},
	CodeDatabaseError:         {"数据库服务出错", http.StatusInternalServerError},
	CodeCacheError:            {"缓存服务出错", http.StatusInternalServerError},
	CodeNotificationError:     {"通知服务出错", http.StatusInternalServerError},
}

// Detail 返回状态码对应的状态说明。未知 code 返回空串。
func (c ResponseCode) Detail() string {
	return codeTable[c].detail
}

// StatusHint 返回状态码对应的 HTTP 状态码提示。未知 code 返回 0。
func (c ResponseCode) StatusHint() int {
	return codeTable[c].status
}

// =============================================================================
// Response envelope
// =============================================================================

// Response 认证服务响应 envelope。
type Response struct {
	// Code 状态码。
	Code ResponseCode

	// Msg 响应消息。
	Msg string

	// Detail 响应详情。
	Detail string

	// Data 业务数据，保留原始 JSON 交由调用方解码。
	Data json.RawMessage

	client   *Client
	request  *http.Request
	response *http.Response
}

// ParseResponse 解析 HTTP 响应为 envelope。
// 严格解析：code/msg/detail/data 四个字段缺一即返回 ErrMalformedResponse。
func ParseResponse(resp *http.Response, client *Client) (*Response, error) {
	lr := &io.LimitedReader{R: resp.Body, N: maxResponseSize + 1}
	body, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("zqauth: read response body failed: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, maxResponseSize)
	}

	// 先解到 map 以区分"字段缺失"与"字段为 null"
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, field := range []string{"code", "msg", "detail", "data"} {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedResponse, field)
		}
	}

	r := &Response{
		Data:     raw["data"],
		client:   client,
		request:  resp.Request,
		response: resp,
	}

	var code string
	if err := json.Unmarshal(raw["code"], &code); err != nil {
		return nil, fmt.Errorf("%w: invalid code field: %v", ErrMalformedResponse, err)
	}
	r.Code = ResponseCode(code)

	if err := json.Unmarshal(raw["msg"], &r.Msg); err != nil {
		return nil, fmt.Errorf("%w: invalid msg field: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(raw["detail"], &r.Detail); err != nil {
		return nil, fmt.Errorf("%w: invalid detail field: %v", ErrMalformedResponse, err)
	}

	return r, nil
}

// Success 判断 envelope 是否为成功响应。
func (r *Response) Success() bool {
	return r.Code == CodeSuccess
}

// Err 构建 code 对应的 ClientError。成功响应返回 nil。
func (r *Response) Err() error {
	if r.Success() {
		return nil
	}
	return &ClientError{
		Code:     r.Code,
		Msg:      r.Msg,
		Client:   r.client,
		Request:  r.request,
		Response: r.response,
	}
}

func (r *Response) String() string {
	return fmt.Sprintf("code: %s, detail: %s, msg: %s", r.Code, r.Detail, r.Msg)
}
