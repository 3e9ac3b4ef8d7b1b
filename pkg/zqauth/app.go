package zqauth

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// 业务端点组
// =============================================================================

// AppAPI app 业务端点组，通过 Client.App 访问。
type AppAPI struct {
	client *Client
}

func newAppAPI(c *Client) *AppAPI {
	return &AppAPI{client: c}
}

// =============================================================================
// 响应结构
// =============================================================================

// TestAccount 连通性测试响应中的账号信息。
type TestAccount struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Type        int    `json:"type"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// TestResult 连通性测试响应。
type TestResult struct {
	// User 当前认证的账号。
	User TestAccount `json:"user"`

	// Time 服务端时间。
	Time time.Time `json:"time"`
}

// AppInfo app 信息。
type AppInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// UserInfo 用户信息。
// detail=false 时服务端只返回 certify_time，其余字段为零值。
type UserInfo struct {
	Name        string `json:"name"`
	StudentID   string `json:"student_id"`
	Phone       string `json:"phone"`
	IsCertified bool   `json:"is_certified"`

	// CertifyTime 认证时间，未认证时为 nil。
	CertifyTime *time.Time `json:"certify_time"`

	// UpdateTime 信息更新时间。
	UpdateTime *time.Time `json:"update_time"`
}

// =============================================================================
// 端点方法
// =============================================================================

// Test 连通性测试（ping），回显当前认证的账号与服务端时间。
// 用于验证凭据与 token 链路是否工作。
func (a *AppAPI) Test(ctx context.Context) (*TestResult, error) {
	var result TestResult
	if _, err := a.client.Get(ctx, PathTest, WithResult(&result)); err != nil {
		return nil, err
	}
	return &result, nil
}

// Info 获取当前 app 的信息。
// app id 取自登录缓存，未登录时会先触发一次登录。
func (a *AppAPI) Info(ctx context.Context) (*AppInfo, error) {
	id, err := a.client.ID(ctx)
	if err != nil {
		return nil, err
	}

	var result AppInfo
	if _, err := a.client.Get(ctx, fmt.Sprintf("/apps/%d/", id), WithResult(&result)); err != nil {
		return nil, err
	}
	return &result, nil
}

// ssoResult sso 换取响应 data。
type ssoResult struct {
	UnionID string `json:"union_id"`
}

// SSO 用第三方单点登录下发的临时 code 换取用户 union id。
//
// code 无效（服务端返回资源不存在 A0514）时返回 ErrThirdLoginFailed：
// 临时 code 一次有效，换取失败只能引导用户重新走 SSO 流程。
func (a *AppAPI) SSO(ctx context.Context, code string) (uuid.UUID, error) {
	var result ssoResult
	_, err := a.client.Post(ctx, PathSSOUnionID,
		WithBody(map[string]string{"code": code}),
		WithResult(&result),
	)
	if err != nil {
		if errHasCode(err, CodeResourceNotFound) {
			if ce, ok := AsClientError(err); ok {
				return uuid.Nil, ce.WithKind(ErrThirdLoginFailed)
			}
		}
		return uuid.Nil, err
	}

	id, err := uuid.Parse(result.UnionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("zqauth: parse union id %q failed: %w", result.UnionID, err)
	}
	return id, nil
}

// UserInfo 按 union id 查询用户信息。
// detail 为 false 时只返回认证时间。
//
// union id 对应的用户不存在（已解除绑定，服务端返回 A0514）时
// 返回 ErrUserNotFound。
func (a *AppAPI) UserInfo(ctx context.Context, unionID uuid.UUID, detail bool) (*UserInfo, error) {
	var result UserInfo
	_, err := a.client.Get(ctx,
		// 服务端使用不带连字符的 32 位十六进制形式
		fmt.Sprintf("/users/%s/", hex.EncodeToString(unionID[:])),
		WithParams(map[string]string{"detail": fmt.Sprintf("%t", detail)}),
		WithResult(&result),
	)
	if err != nil {
		if errHasCode(err, CodeResourceNotFound) {
			if ce, ok := AsClientError(err); ok {
				return nil, ce.WithKind(ErrUserNotFound)
			}
		}
		return nil, err
	}
	return &result, nil
}
