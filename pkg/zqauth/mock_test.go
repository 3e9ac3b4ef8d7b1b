package zqauth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ziqiangstudio/zqauth-go/pkg/sessionstore"
)

// 测试固定数据，与服务端联调用例保持一致。
const (
	testAppID    = "123"
	testSecret   = "123"
	testUsername = "zq_test"
	testName     = "测试项目"

	testAccessToken  = "access_token"
	testRefreshToken = "refresh_token"
	testExpireTime   = "2123-03-07T09:16:15.844900Z"
	testUnionID      = "678574dd4a274d3cbfac10666b7613ef"

	testAppPK = int64(9)
)

// writeEnvelope 按协议格式输出响应 envelope。
func writeEnvelope(w http.ResponseWriter, code ResponseCode, data any) {
	w.Header().Set("Content-Type", "application/json")
	if code != CodeSuccess {
		w.WriteHeader(code.StatusHint())
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":   string(code),
		"msg":    "",
		"detail": code.Detail(),
		"data":   data,
	})
}

// fakeServer 模拟认证服务：登录、刷新与业务端点。
type fakeServer struct {
	t   *testing.T
	mux *http.ServeMux
	srv *httptest.Server

	mu sync.Mutex
	// accessToken 当前有效的 access token，改写即令已下发的 token 失效。
	accessToken string
	// issueRefresh 登录响应是否下发 refresh token。
	issueRefresh bool
	// failLogin 登录一律返回 A0210。
	failLogin bool
	// refreshInvalid 刷新一律返回 A0221。
	refreshInvalid bool

	loginCalls   int
	refreshCalls int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()

	f := &fakeServer{
		t:            t,
		mux:          http.NewServeMux(),
		accessToken:  testAccessToken,
		issueRefresh: true,
	}
	f.mux.HandleFunc("POST "+PathAppLogin, f.handleLogin)
	f.mux.HandleFunc("POST "+PathTokenRefresh, f.handleRefresh)

	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)
	return f
}

// handle 注册业务端点。业务端点一律要求有效的 Bearer token。
func (f *fakeServer) handle(pattern string, handler func(w http.ResponseWriter, r *http.Request)) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			writeEnvelope(w, CodeTokenInvalid, nil)
			return
		}
		handler(w, r)
	})
}

func (f *fakeServer) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return r.Header.Get("Authorization") == "Bearer "+f.accessToken
}

func (f *fakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.loginCalls++
	fail := f.failLogin
	token := f.accessToken
	issueRefresh := f.issueRefresh
	f.mu.Unlock()

	var body struct {
		AppKey    string `json:"app_key"`
		AppSecret string `json:"app_secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, CodeJSONParseFailed, nil)
		return
	}
	if fail || body.AppKey != testAppID || body.AppSecret != testSecret {
		writeEnvelope(w, CodeLoginFailed, nil)
		return
	}

	data := map[string]any{
		"id":          testAppPK,
		"username":    testUsername,
		"name":        testName,
		"access":      token,
		"expire_time": testExpireTime,
	}
	if issueRefresh {
		data["refresh"] = testRefreshToken
	}
	writeEnvelope(w, CodeSuccess, data)
}

func (f *fakeServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.refreshCalls++
	invalid := f.refreshInvalid
	token := f.accessToken
	f.mu.Unlock()

	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, CodeJSONParseFailed, nil)
		return
	}
	if invalid || body.Refresh != testRefreshToken {
		writeEnvelope(w, CodeTokenInvalid, nil)
		return
	}

	writeEnvelope(w, CodeSuccess, map[string]any{
		"access":      token,
		"expire_time": testExpireTime,
	})
}

// rotateToken 在服务端轮换 access token，令客户端已持有的 token 失效。
func (f *fakeServer) rotateToken(token string) {
	f.mu.Lock()
	f.accessToken = token
	f.mu.Unlock()
}

func (f *fakeServer) counts() (login, refresh int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.refreshCalls
}

// testLogger 测试用静默日志。
func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestClient 创建接入 fakeServer 的客户端。
func (f *fakeServer) newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	allOpts := append([]Option{WithLogger(testLogger())}, opts...)
	c, err := NewClient(context.Background(), &Config{
		AppID:   testAppID,
		Secret:  testSecret,
		BaseURL: f.srv.URL,
	}, allOpts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

// seedSession 直接向存储写入一份完整会话，绕过登录。
func seedSession(t *testing.T, store sessionstore.Store, expireTime string) {
	t.Helper()
	ctx := context.Background()

	fields := map[string]string{
		CacheFieldAccessToken:  testAccessToken,
		CacheFieldExpireTime:   expireTime,
		CacheFieldRefreshToken: testRefreshToken,
		CacheFieldID:           "9",
		CacheFieldUsername:     testUsername,
		CacheFieldName:         testName,
	}
	for field, value := range fields {
		if err := store.Set(ctx, testAppID+"_"+field, value, 0); err != nil {
			t.Fatalf("seed %s failed: %v", field, err)
		}
	}
}
