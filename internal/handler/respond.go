package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// writeJSON は成功レスポンスをJSONで書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError("", false))
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeNoAuthHeader, model.ErrCodeInvalidAuthFormat,
		model.ErrCodeInvalidToken, model.ErrCodeAuthError:
		return http.StatusUnauthorized
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeNotFound, model.ErrCodeRouteNotFound:
		return http.StatusNotFound
	default:
		// FETCH_ERROR等のストア障害とINTERNAL_ERROR
		return http.StatusInternalServerError
	}
}
