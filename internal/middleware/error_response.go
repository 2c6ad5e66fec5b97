package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/jobtrack/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// すべての非2xxレスポンスはこの形になる。
type ErrorResponseBody struct {
	Success bool               `json:"success"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Errors  []model.FieldError `json:"errors,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Success: false,
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Errors:  apiErr.Fields,
	})
}
