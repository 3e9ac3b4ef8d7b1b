package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateApp(t *testing.T) {
	app := createApp()

	if app.Name != "zqauthctl" {
		t.Errorf("Name = %q", app.Name)
	}

	registered := make(map[string]bool, len(app.Commands))
	for _, c := range app.Commands {
		registered[c.Name] = true
	}
	for _, name := range []string{"ping", "app-info", "sso", "user-info", "token"} {
		if !registered[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestUsageErrors(t *testing.T) {
	ctx := context.Background()

	run := func(args ...string) error {
		app := createApp()
		app.Writer = &bytes.Buffer{}
		return app.Run(ctx, append([]string{"zqauthctl"}, args...))
	}

	t.Run("sso without code", func(t *testing.T) {
		err := run("--app-key", "k", "--app-secret", "s", "sso")
		var ue *usageError
		if !errors.As(err, &ue) {
			t.Errorf("expected usageError, got %v", err)
		}
	})

	t.Run("user-info with invalid union id", func(t *testing.T) {
		err := run("--app-key", "k", "--app-secret", "s", "user-info", "not-a-uuid")
		var ue *usageError
		if !errors.As(err, &ue) {
			t.Errorf("expected usageError, got %v", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Setenv("ZQAUTH_APP_KEY", "")
		t.Setenv("ZQAUTH_APP_SECRET", "")

		err := run("ping")
		var ue *usageError
		if !errors.As(err, &ue) {
			t.Errorf("expected usageError, got %v", err)
		}
	})
}

// newFakeAuthServer 启动最小化的认证服务：登录 + ping。
func newFakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	writeEnvelope := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": "00000", "msg": "", "detail": "", "data": data,
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/apps/", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, map[string]any{
			"id":          9,
			"username":    "zq_test",
			"name":        "测试项目",
			"access":      "access_token",
			"refresh":     "refresh_token",
			"expire_time": "2123-03-07T09:16:15.844900Z",
		})
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, map[string]any{
			"user": map[string]any{"id": 9, "username": "zq_test", "is_active": true},
			"time": "2023-03-06T18:26:53.713365+08:00",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPingCommand(t *testing.T) {
	srv := newFakeAuthServer(t)

	var out bytes.Buffer
	app := createApp()
	app.Writer = &out

	err := app.Run(context.Background(), []string{
		"zqauthctl",
		"--app-key", "123",
		"--app-secret", "123",
		"--base-url", srv.URL,
		"ping",
	})
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	if !strings.Contains(out.String(), "zq_test") {
		t.Errorf("output = %q, expected ping result", out.String())
	}
}

func TestTokenCommand(t *testing.T) {
	srv := newFakeAuthServer(t)

	var out bytes.Buffer
	app := createApp()
	app.Writer = &out

	err := app.Run(context.Background(), []string{
		"zqauthctl",
		"--app-key", "123",
		"--app-secret", "123",
		"--base-url", srv.URL,
		"token",
	})
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}

	if strings.TrimSpace(out.String()) != "access_token" {
		t.Errorf("output = %q, expected access token", out.String())
	}
}
