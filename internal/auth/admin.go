package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AccountDeleter は認証ストア上のユーザーアカウント削除のインターフェース。
// 退会処理から利用する。
type AccountDeleter interface {
	// DeleteUser は指定ユーザーを認証ストアから削除する。
	DeleteUser(ctx context.Context, userID string) error
}

// AdminClient はSupabase Authの管理APIクライアント。
// サービスキーを使用するため、サーバー内部でのみ生成・利用すること。
type AdminClient struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewAdminClient はAdminClientを生成する。
func NewAdminClient(baseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// DeleteUser は指定ユーザーをSupabase Authから削除する。
// DELETE /auth/v1/admin/users/{id} をサービスキーで呼び出す。
func (c *AdminClient) DeleteUser(ctx context.Context, userID string) error {
	url := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call admin endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("admin endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// compile-time interface check
var _ AccountDeleter = (*AdminClient)(nil)
