package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/jobtrack/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
// GeneralPerMin/AIPerMinはreq/min/user単位で指定する。
type RateLimiterConfig struct {
	GeneralPerMin   int           // API全般のレート
	AIPerMin        int           // メール生成のレート（外部API呼び出しを伴うため厳しめ）
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min/user、メール生成 10 req/min/user。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralPerMin:   120,
		AIPerMin:        10,
		CleanupInterval: 5 * time.Minute,
	}
}

// userLimiter はユーザーごとのレートリミッターとアクセス時刻を保持する。
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterTier は1種類のレート制限を管理する。
type limiterTier struct {
	rate  rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*userLimiter
}

func newLimiterTier(perMin int) *limiterTier {
	return &limiterTier{
		rate:     rate.Limit(float64(perMin) / 60.0),
		burst:    perMin,
		limiters: make(map[string]*userLimiter),
	}
}

// allow はユーザーのトークン消費を試みる。リミッターは必要に応じて生成する。
func (t *limiterTier) allow(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ul, exists := t.limiters[userID]
	if !exists {
		ul = &userLimiter{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.limiters[userID] = ul
	}
	ul.lastAccess = time.Now()

	return ul.limiter.Allow()
}

// cleanup は最終アクセス時刻がttlを超えたエントリを削除する。
func (t *limiterTier) cleanup(ttl time.Duration) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for userID, ul := range t.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(t.limiters, userID)
		}
	}
}

func (t *limiterTier) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}

// RateLimiter はユーザーごとのレート制限を管理する。
// API全般のレート制限とメール生成のレート制限の2種類を提供する。
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterTier
	ai      *limiterTier
	stopCh  chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: newLimiterTier(config.GeneralPerMin),
		ai:      newLimiterTier(config.AIPerMin),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// リクエストコンテキストにユーザーが含まれている必要がある（認証ミドルウェアの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general, "general")
}

// AIMiddleware はメール生成専用のレート制限ミドルウェアを返す。
// API全般のレート制限とは独立に動作する。
func (rl *RateLimiter) AIMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.ai, "ai_generation")
}

func (rl *RateLimiter) middleware(tier *limiterTier, limitType string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
				return
			}

			if !tier.allow(userID) {
				writeRateLimitResponse(w, tier.rate)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", limitType),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
// テスト用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// AILimiterCount は現在管理されているメール生成リミッターのエントリ数を返す。
// テスト用。
func (rl *RateLimiter) AILimiterCount() int {
	return rl.ai.count()
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ttl := rl.config.CleanupInterval * 2
			rl.general.cleanup(ttl)
			rl.ai.cleanup(ttl)
		case <-rl.stopCh:
			return
		}
	}
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:    "RATE_LIMIT_EXCEEDED",
		Message: "リクエストが多すぎます。しばらく待ってから再度お試しください。",
	})
}
