package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/model"
)

// NewAuthMiddleware はAuthorizationヘッダのベアラートークンを検証する
// ミドルウェアを返す。認証済みユーザーをリクエストコンテキストに注入する。
//
// 拒否理由は4種類に区別される:
//   - ヘッダなし → NO_AUTH_HEADER
//   - "Bearer <token>" 形式でない → INVALID_AUTH_FORMAT
//   - トークンが無効・期限切れ → INVALID_TOKEN
//   - 検証処理自体の失敗 → AUTH_ERROR
func NewAuthMiddleware(verifier auth.TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewNoAuthHeaderError())
				return
			}

			token, ok := parseBearer(header)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidAuthFormatError())
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidTokenError())
					return
				}
				slog.Error("token verification failed",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseBearer はAuthorizationヘッダ値からベアラートークンを取り出す。
// スキームの大文字小文字は区別しない。トークンが空の場合は不正とみなす。
func parseBearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
