package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// AccountServiceInterface はアカウント退会のサービスインターフェース。
type AccountServiceInterface interface {
	Withdraw(ctx context.Context, userID string) error
}

// AuthHandler は認証済みユーザー情報とアカウント管理のHTTPハンドラー。
// トークンの発行・失効は認証基盤側の責務であり、ここでは扱わない。
type AuthHandler struct {
	account AccountServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(account AccountServiceInterface) *AuthHandler {
	return &AuthHandler{account: account}
}

// Me は認証済みユーザーのプロフィールを返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	writeSuccessData(w, http.StatusOK, struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}{ID: user.ID, Email: user.Email, Role: user.Role})
}

// Verify はトークンが有効であることを確認し、ユーザーIDとメールアドレスを返す。
// GET /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		UserID  string `json:"userId"`
		Email   string `json:"email"`
	}{Success: true, UserID: user.ID, Email: user.Email})
}

// DeleteAccount は呼び出し元ユーザーの応募レコードとアカウントを削除する。
// DELETE /api/auth/account
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	if err := h.account.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: "アカウントを削除しました。"})
}
