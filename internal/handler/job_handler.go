package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobtrack/internal/job"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// JobServiceInterface は応募レコードハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	List(ctx context.Context, userID string, in job.ListInput) (*job.ListResult, error)
	Get(ctx context.Context, userID, id string) (*model.JobApplication, error)
	Create(ctx context.Context, userID string, in job.CreateInput) (*model.JobApplication, error)
	Update(ctx context.Context, userID, id string, in job.UpdateInput) (*model.JobApplication, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*job.StatsResult, error)
}

// JobHandler は応募レコード管理のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{service: service}
}

// applicationResponse は応募レコードのAPIレスポンス。
type applicationResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	CompanyName string `json:"company_name"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	AppliedDate string `json:"applied_date"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// paginationResponse は一覧レスポンスのページング情報。
type paginationResponse struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func toApplicationResponse(app *model.JobApplication) applicationResponse {
	return applicationResponse{
		ID:          app.ID,
		UserID:      app.UserID,
		CompanyName: app.CompanyName,
		Role:        app.Role,
		Status:      string(app.Status),
		AppliedDate: app.AppliedDate.Format("2006-01-02"),
		Notes:       app.Notes,
		CreatedAt:   app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   app.UpdatedAt.Format(time.RFC3339),
	}
}

func toApplicationResponses(apps []*model.JobApplication) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationResponse(app))
	}
	return out
}

// List は応募レコードの一覧を返す。
// GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	in := job.ListInput{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}

	var fields []model.FieldError
	in.Limit, fields = parseQueryInt(r, "limit", fields)
	in.Offset, fields = parseQueryInt(r, "offset", fields)
	if len(fields) > 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(fields))
		return
	}

	result, err := h.service.List(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success    bool                  `json:"success"`
		Data       []applicationResponse `json:"data"`
		Pagination paginationResponse    `json:"pagination"`
	}{
		Success: true,
		Data:    toApplicationResponses(result.Applications),
		Pagination: paginationResponse{
			Total:   result.Total,
			Limit:   result.Limit,
			Offset:  result.Offset,
			HasMore: result.HasMore,
		},
	})
}

// Get は応募レコードの詳細を返す。
// GET /api/jobs/:id
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	app, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessData(w, http.StatusOK, toApplicationResponse(app))
}

// Create は応募レコードを作成する。
// POST /api/jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	var in job.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError([]model.FieldError{
			{Field: "body", Message: "リクエストボディの解析に失敗しました。"},
		}))
		return
	}

	app, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessData(w, http.StatusCreated, toApplicationResponse(app))
}

// Update は応募レコードを部分更新する。
// PUT /api/jobs/:id
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	var in job.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError([]model.FieldError{
			{Field: "body", Message: "リクエストボディの解析に失敗しました。"},
		}))
		return
	}

	app, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessData(w, http.StatusOK, toApplicationResponse(app))
}

// Delete は応募レコードを削除する。
// DELETE /api/jobs/:id
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: true, Message: "応募レコードを削除しました。"})
}

// Stats はダッシュボード統計を返す。
// GET /api/jobs/stats
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	result, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessData(w, http.StatusOK, struct {
		Stats  statsResponse         `json:"stats"`
		Recent []applicationResponse `json:"recent"`
	}{
		Stats: statsResponse{
			Total:     result.Stats.Total,
			Applied:   result.Stats.Applied,
			Interview: result.Stats.Interview,
			Rejected:  result.Stats.Rejected,
			Offer:     result.Stats.Offer,
		},
		Recent: toApplicationResponses(result.Recent),
	})
}

// statsResponse は集計結果のAPIレスポンス。
type statsResponse struct {
	Total     int `json:"total"`
	Applied   int `json:"applied"`
	Interview int `json:"interview"`
	Rejected  int `json:"rejected"`
	Offer     int `json:"offer"`
}

// writeSuccessData は{success:true, data:...}形式のレスポンスを書き込む。
func writeSuccessData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, struct {
		Success bool `json:"success"`
		Data    any  `json:"data"`
	}{Success: true, Data: data})
}

// parseQueryInt はクエリパラメータを整数として解釈する。
// 未指定は0、数値でない値はフィールドエラーとして収集する。
func parseQueryInt(r *http.Request, name string, fields []model.FieldError) (int, []model.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fields
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, append(fields, model.FieldError{Field: name, Message: "数値を指定してください。"})
	}
	return n, fields
}
