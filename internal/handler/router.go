package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/email"
	"github.com/hitoshi/jobtrack/internal/metrics"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Verifier          auth.TokenVerifier
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	Development       bool

	// サービス
	JobService     JobServiceInterface
	EmailGenerator email.Generator
	AccountService AccountServiceInterface
	Sanitizer      security.TextSanitizerService

	// メトリクス。Collectorがnilの場合は記録しない。
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer

	Version string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → セキュリティヘッダ → アクセスログ → パニック回復
//
// 認証が必要なルートにはさらに認証 → レート制限(General)が重なり、
// AI生成ルートにはAI専用レート制限が追加される。
// /api/healthと/metricsはチェーンの外側の認証不要ルート。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	var observer middleware.StatusObserver
	if deps.Collector != nil {
		observer = deps.Collector
	}

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, observer))
	r.Use(middleware.NewRecoveryMiddleware(deps.Development))

	jobHandler := NewJobHandler(deps.JobService)
	var recorder DraftRecorder
	if deps.Collector != nil {
		recorder = deps.Collector
	}
	emailHandler := NewEmailHandler(deps.EmailGenerator, deps.Sanitizer, recorder)
	authHandler := NewAuthHandler(deps.AccountService)

	// --- 認証不要のルート ---

	r.Get("/api/health", NewHealthHandler(deps.Version))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Verifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証済みユーザー情報
		r.Route("/api/auth", func(r chi.Router) {
			r.Get("/me", authHandler.Me)
			r.Get("/verify", authHandler.Verify)
			r.Delete("/account", authHandler.DeleteAccount)
		})

		// 応募レコード管理
		r.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", jobHandler.List)
			r.Post("/", jobHandler.Create)

			// /statsは/{id}より先に登録する
			r.Get("/stats", jobHandler.Stats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", jobHandler.Get)
				r.Put("/", jobHandler.Update)
				r.Delete("/", jobHandler.Delete)
			})
		})

		// メール下書き生成
		r.Route("/api/ai", func(r chi.Router) {
			r.Get("/status", emailHandler.Status)

			// 外部APIを呼ぶため専用の厳しいレート制限を重ねる
			r.With(deps.RateLimiter.AIMiddleware()).Post("/generate-email", emailHandler.Generate)
		})
	})

	// 未定義ルート
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewRouteNotFoundError())
	})

	return r
}

// NewHealthHandler はヘルスチェックのHTTPハンドラーを返す。
// GET /api/health
func NewHealthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Version string `json:"version"`
		}{Success: true, Message: "OK", Version: version})
	}
}
