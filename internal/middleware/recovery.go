package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hitoshi/jobtrack/internal/model"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// INTERNAL_ERRORの500レスポンスを返すミドルウェアを生成する。
// developmentがtrueの場合はpanicの内容をレスポンスに含め、
// 本番では固定メッセージのみを返す。スタックトレースは常にログに記録する。
func NewRecoveryMiddleware(development bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					WriteErrorResponse(w, http.StatusInternalServerError,
						model.NewInternalError(fmt.Sprintf("panic: %v", rec), development))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
