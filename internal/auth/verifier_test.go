package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret"

// テスト用のHS256署名済みトークンを生成するヘルパー。
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// 有効なトークンのローカル検証でユーザーが解決されることを検証
func TestVerify_LocalValid(t *testing.T) {
	v := NewSupabaseVerifier(SupabaseVerifierConfig{JWTSecret: testSecret})

	token := signToken(t, jwt.MapClaims{
		"sub":   "user-123",
		"email": "taro@example.com",
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	user, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-123" {
		t.Errorf("ID = %q, want %q", user.ID, "user-123")
	}
	if user.Email != "taro@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
}

// 期限切れトークンがErrInvalidTokenになることを検証
func TestVerify_LocalExpired(t *testing.T) {
	v := NewSupabaseVerifier(SupabaseVerifierConfig{JWTSecret: testSecret})

	token := signToken(t, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

// 別の鍵で署名されたトークンが拒否されることを検証
func TestVerify_LocalWrongSecret(t *testing.T) {
	v := NewSupabaseVerifier(SupabaseVerifierConfig{JWTSecret: "another-secret"})

	token := signToken(t, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

// subクレームのないトークンが拒否されることを検証
func TestVerify_LocalMissingSub(t *testing.T) {
	v := NewSupabaseVerifier(SupabaseVerifierConfig{JWTSecret: testSecret})

	token := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

// シークレット未設定時にREST APIフォールバックが使われることを検証
func TestVerify_RemoteFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer remote-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("apikey = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-456","email":"hanako@example.com","role":"authenticated"}`))
	}))
	defer srv.Close()

	v := NewSupabaseVerifier(SupabaseVerifierConfig{URL: srv.URL, AnonKey: "anon-key"})

	user, err := v.Verify(context.Background(), "remote-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("REST API should be called when JWT secret is not configured")
	}
	if user.ID != "user-456" {
		t.Errorf("ID = %q", user.ID)
	}
}

// REST APIが401を返した場合にErrInvalidTokenになることを検証
func TestVerify_RemoteUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	v := NewSupabaseVerifier(SupabaseVerifierConfig{URL: srv.URL})

	_, err := v.Verify(context.Background(), "bad-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

// AdminClient.DeleteUserが管理APIを正しく呼び出すことを検証
func TestAdminClient_DeleteUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Path != "/auth/v1/admin/users/user-123" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, "service-key")
	if err := c.DeleteUser(context.Background(), "user-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// 管理APIのエラー応答がエラーとして返ることを検証
func TestAdminClient_DeleteUser_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, "service-key")
	if err := c.DeleteUser(context.Background(), "user-123"); err == nil {
		t.Fatal("expected error")
	}
}
