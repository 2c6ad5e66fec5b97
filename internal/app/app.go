package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/jobtrack/internal/account"
	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/config"
	"github.com/hitoshi/jobtrack/internal/database"
	"github.com/hitoshi/jobtrack/internal/email"
	"github.com/hitoshi/jobtrack/internal/handler"
	"github.com/hitoshi/jobtrack/internal/job"
	"github.com/hitoshi/jobtrack/internal/logger"
	"github.com/hitoshi/jobtrack/internal/metrics"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/repository"
	"github.com/hitoshi/jobtrack/internal/security"
)

// Version はビルド時に-ldflagsで埋め込まれるバージョン文字列。
var Version = "dev"

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	// この時点では環境が未確定のためInfoレベルで始める
	logger.SetupDefault(w, false)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 環境が確定したのでログレベルを反映し直す（開発環境はDebug）
	logger.SetupDefault(w, cfg.IsDevelopment())

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("env", cfg.Env),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続。到達できない場合は起動を中断する
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	appRepo := repository.NewPostgresApplicationRepo(db)

	// 3. セキュリティ・認証の初期化
	sanitizer := security.NewTextSanitizer()
	verifier := auth.NewSupabaseVerifier(auth.SupabaseVerifierConfig{
		URL:       cfg.SupabaseURL,
		AnonKey:   cfg.SupabaseAnonKey,
		JWTSecret: cfg.SupabaseJWTSecret,
	})
	adminClient := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)

	// 4. ドメインサービスの初期化
	jobService := job.NewService(appRepo, sanitizer)
	accountService := account.NewService(appRepo, adminClient, slog.Default())

	// メール生成器は設定に応じて起動時に選択する。
	// 資格情報がなければテンプレート生成のみで、外部呼び出しの経路は存在しない
	generator := email.NewGenerator(email.OpenAIGeneratorConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.AITimeout,
	}, slog.Default())

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. レート制限の初期化
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralPerMin = cfg.RateLimitGeneral
	rateLimiterCfg.AIPerMin = cfg.RateLimitAI
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Verifier:          verifier,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Development:       cfg.IsDevelopment(),

		JobService:     jobService,
		EmailGenerator: generator,
		AccountService: accountService,
		Sanitizer:      sanitizer,

		Collector: collector,
		Gatherer:  registry,

		Version: Version,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /api/health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/api/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
