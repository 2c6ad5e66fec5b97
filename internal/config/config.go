// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// 動作環境の識別子。
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Supabase（認証ストア）
	SupabaseURL        string
	SupabaseServiceKey string // サーバー専用。クライアントに渡してはならない
	SupabaseAnonKey    string
	SupabaseJWTSecret  string // 設定時はローカル署名検証を使う

	// AI（任意）
	OpenAIAPIKey string
	OpenAIModel  string
	AITimeout    time.Duration

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitAI      int

	// Server
	ServerPort string
	Env        string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はまとめて1つのエラーで返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	if cfg.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}

	cfg.SupabaseServiceKey = os.Getenv("SUPABASE_SERVICE_KEY")
	if cfg.SupabaseServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")
	cfg.SupabaseJWTSecret = os.Getenv("SUPABASE_JWT_SECRET")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnvString("OPENAI_MODEL", "gpt-4o-mini")
	cfg.AITimeout = getEnvDuration("AI_TIMEOUT", 20*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAI = getEnvInt("RATE_LIMIT_AI", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.Env = getEnvString("APP_ENV", EnvDevelopment)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

// IsDevelopment は開発環境かどうかを返す。
// 未知の値はproductionと同様に扱い、エラーメッセージの詳細を抑制する。
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
