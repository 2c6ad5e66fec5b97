// Package auth はSupabase Authが発行したアクセストークンの検証を提供する。
//
// SUPABASE_JWT_SECRETが設定されている場合はHS256署名をローカルで検証し、
// ネットワーク往復なしで呼び出し元の識別子を解決する。未設定の場合は
// Supabase AuthのREST API（GET /auth/v1/user）へフォールバックする。
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken はトークンが無効・期限切れの場合に返される。
var ErrInvalidToken = errors.New("invalid or expired token")

// User は検証済みトークンから解決された呼び出し元を表す。
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenVerifier はベアラートークンの検証インターフェース。
// ミドルウェアおよび退会処理から利用する。
type TokenVerifier interface {
	// Verify はトークンを検証し、呼び出し元のユーザーを返す。
	// 無効・期限切れの場合はErrInvalidTokenを返す。
	Verify(ctx context.Context, token string) (*User, error)
}

// SupabaseVerifierConfig はSupabaseVerifierの設定を保持する。
type SupabaseVerifierConfig struct {
	URL       string // SupabaseプロジェクトのベースURL
	AnonKey   string // RESTフォールバック時のapikeyヘッダ
	JWTSecret string // 設定時はローカル署名検証を使う
}

// SupabaseVerifier はSupabase Authのアクセストークンを検証するTokenVerifier実装。
type SupabaseVerifier struct {
	config SupabaseVerifierConfig
	client *http.Client
}

// NewSupabaseVerifier はSupabaseVerifierを生成する。
func NewSupabaseVerifier(config SupabaseVerifierConfig) *SupabaseVerifier {
	return &SupabaseVerifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify はトークンを検証し、呼び出し元のユーザーを返す。
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*User, error) {
	if v.config.JWTSecret != "" {
		return v.verifyLocal(token)
	}
	return v.verifyRemote(ctx, token)
}

// verifyLocal はJWT署名をローカルで検証し、クレームからユーザーを復元する。
// SupabaseのアクセストークンはHS256で署名され、subにユーザーIDを持つ。
func (v *SupabaseVerifier) verifyLocal(token string) (*User, error) {
	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	user := &User{
		ID:    stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
		Role:  stringClaim(claims, "role"),
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	return user, nil
}

// verifyRemote はSupabase AuthのREST APIでトークンを検証する。
func (v *SupabaseVerifier) verifyRemote(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.config.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.config.AnonKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("auth endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	return &user, nil
}

// stringClaim はクレームから文字列値を取り出す。型が異なる場合は空文字列。
func stringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

// compile-time interface check
var _ TokenVerifier = (*SupabaseVerifier)(nil)
