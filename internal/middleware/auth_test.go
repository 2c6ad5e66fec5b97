package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/model"
)

// mockVerifier はauth.TokenVerifierのモック実装。
type mockVerifier struct {
	verifyFn func(ctx context.Context, token string) (*auth.User, error)
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*auth.User, error) {
	return m.verifyFn(ctx, token)
}

// 認証成功時にユーザーがコンテキストに注入されることを検証
func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(ctx context.Context, token string) (*auth.User, error) {
			if token != "valid-token" {
				t.Errorf("token = %q", token)
			}
			return &auth.User{ID: "user-123", Email: "taro@example.com"}, nil
		},
	}

	var gotUser *auth.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	NewAuthMiddleware(verifier)(next).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if gotUser == nil || gotUser.ID != "user-123" {
		t.Errorf("user = %+v", gotUser)
	}
}

// 拒否理由ごとに正しいエラーコードが返ることを検証
func TestAuthMiddleware_RejectionCodes(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		verifyErr error
		wantCode  string
	}{
		{"ヘッダなし", "", nil, model.ErrCodeNoAuthHeader},
		{"スキーム不正", "Basic abc123", nil, model.ErrCodeInvalidAuthFormat},
		{"トークン部なし", "Bearer", nil, model.ErrCodeInvalidAuthFormat},
		{"トークンが空白のみ", "Bearer   ", nil, model.ErrCodeInvalidAuthFormat},
		{"無効トークン", "Bearer bad", auth.ErrInvalidToken, model.ErrCodeInvalidToken},
		{"検証処理の失敗", "Bearer any", errors.New("network down"), model.ErrCodeAuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{
				verifyFn: func(ctx context.Context, token string) (*auth.User, error) {
					if tt.verifyErr != nil {
						return nil, tt.verifyErr
					}
					return &auth.User{ID: "user-123"}, nil
				},
			}

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			})

			req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			NewAuthMiddleware(verifier)(next).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}

			var body ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Success {
				t.Error("success should be false")
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

// スキームの大文字小文字が区別されないことを検証
func TestParseBearer_CaseInsensitiveScheme(t *testing.T) {
	for _, header := range []string{"Bearer tok", "bearer tok", "BEARER tok"} {
		token, ok := parseBearer(header)
		if !ok || token != "tok" {
			t.Errorf("parseBearer(%q) = (%q, %v)", header, token, ok)
		}
	}
}
