package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockAccountService はAccountServiceInterfaceのモック実装。
type mockAccountService struct {
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockAccountService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// --- GET /api/auth/me テスト ---

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, withUser(req, "user-123"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]any)
	if data["id"] != "user-123" || data["email"] != "user-123@example.com" {
		t.Errorf("data = %v", data)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

// --- GET /api/auth/verify テスト ---

func TestAuthHandler_Verify(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	w := httptest.NewRecorder()
	h.Verify(w, withUser(req, "user-123"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["userId"] != "user-123" || body["email"] != "user-123@example.com" {
		t.Errorf("body = %v", body)
	}
}

// --- DELETE /api/auth/account テスト ---

func TestAuthHandler_DeleteAccount(t *testing.T) {
	called := false
	svc := &mockAccountService{
		withdrawFn: func(ctx context.Context, userID string) error {
			called = true
			if userID != "user-123" {
				t.Errorf("userID = %q, want user-123", userID)
			}
			return nil
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/account", nil)
	w := httptest.NewRecorder()
	h.DeleteAccount(w, withUser(req, "user-123"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !called {
		t.Error("withdraw should be called")
	}
}

func TestAuthHandler_DeleteAccount_Failure(t *testing.T) {
	svc := &mockAccountService{
		withdrawFn: func(ctx context.Context, userID string) error {
			return errors.New("admin API unavailable")
		},
	}
	h := NewAuthHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/account", nil)
	w := httptest.NewRecorder()
	h.DeleteAccount(w, withUser(req, "user-123"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
