package zqauth

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

// fakeHTTPResponse 构造内存中的 HTTP 响应。
func fakeHTTPResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("success envelope", func(t *testing.T) {
		resp, err := ParseResponse(fakeHTTPResponse(
			`{"code":"00000","msg":"ok","detail":"","data":{"id":9}}`,
		), nil)
		if err != nil {
			t.Fatalf("ParseResponse failed: %v", err)
		}

		if resp.Code != CodeSuccess {
			t.Errorf("Code = %q, expected %q", resp.Code, CodeSuccess)
		}
		if resp.Msg != "ok" {
			t.Errorf("Msg = %q, expected \"ok\"", resp.Msg)
		}
		if !resp.Success() {
			t.Error("Success() should be true")
		}
		if string(resp.Data) != `{"id":9}` {
			t.Errorf("Data = %s, raw payload should be preserved", resp.Data)
		}
	})

	t.Run("null data is still a valid envelope", func(t *testing.T) {
		resp, err := ParseResponse(fakeHTTPResponse(
			`{"code":"00000","msg":"","detail":"","data":null}`,
		), nil)
		if err != nil {
			t.Fatalf("ParseResponse failed: %v", err)
		}
		if !resp.Success() {
			t.Error("Success() should be true")
		}
	})

	t.Run("missing field", func(t *testing.T) {
		for _, body := range []string{
			`{"msg":"","detail":"","data":null}`,
			`{"code":"00000","detail":"","data":null}`,
			`{"code":"00000","msg":"","data":null}`,
			`{"code":"00000","msg":"","detail":""}`,
		} {
			_, err := ParseResponse(fakeHTTPResponse(body), nil)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("body %s: expected ErrMalformedResponse, got %v", body, err)
			}
		}
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseResponse(fakeHTTPResponse(`<html>502 Bad Gateway</html>`), nil)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := ParseResponse(fakeHTTPResponse(
			`{"code":12345,"msg":"","detail":"","data":null}`,
		), nil)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}

func TestResponse_Err(t *testing.T) {
	t.Run("success returns nil", func(t *testing.T) {
		resp := &Response{Code: CodeSuccess}
		if err := resp.Err(); err != nil {
			t.Errorf("Err() = %v, expected nil", err)
		}
	})

	t.Run("failure returns client error", func(t *testing.T) {
		resp := &Response{Code: CodeLoginFailed, Msg: "bad credentials"}
		err := resp.Err()

		ce, ok := AsClientError(err)
		if !ok {
			t.Fatalf("expected *ClientError, got %T", err)
		}
		if ce.Code != CodeLoginFailed {
			t.Errorf("Code = %q, expected %q", ce.Code, CodeLoginFailed)
		}
	})

	t.Run("throttled maps to sentinel", func(t *testing.T) {
		resp := &Response{Code: CodeAPIThrottled}
		if !errors.Is(resp.Err(), ErrAPIThrottled) {
			t.Error("A0512 should match ErrAPIThrottled")
		}
	})
}

func TestResponseCode_Metadata(t *testing.T) {
	if detail := CodeLoginFailed.Detail(); detail != "用户登录失败" {
		t.Errorf("Detail = %q", detail)
	}
	if status := CodeAPIThrottled.StatusHint(); status != http.StatusTooManyRequests {
		t.Errorf("StatusHint = %d, expected 429", status)
	}

	unknown := ResponseCode("Z9999")
	if unknown.Detail() != "" || unknown.StatusHint() != 0 {
		t.Error("unknown code should have empty metadata")
	}
}

func TestClientError_WithKind(t *testing.T) {
	base := &ClientError{Code: CodeResourceNotFound, Msg: "not found"}

	narrowed := base.WithKind(ErrUserNotFound)
	if !errors.Is(narrowed, ErrUserNotFound) {
		t.Error("narrowed error should match its kind sentinel")
	}
	if errors.Is(base, ErrUserNotFound) {
		t.Error("WithKind must not mutate the original error")
	}
	if narrowed.Code != CodeResourceNotFound {
		t.Error("narrowed error should keep the original code")
	}

	// 同一底层错误可按场景收窄为不同哨兵
	if !errors.Is(base.WithKind(ErrThirdLoginFailed), ErrThirdLoginFailed) {
		t.Error("narrowing to a different sentinel should work")
	}
}
