package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/job"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// --- モック定義 ---

// mockJobService はJobServiceInterfaceのモック実装。
type mockJobService struct {
	listFn   func(ctx context.Context, userID string, in job.ListInput) (*job.ListResult, error)
	getFn    func(ctx context.Context, userID, id string) (*model.JobApplication, error)
	createFn func(ctx context.Context, userID string, in job.CreateInput) (*model.JobApplication, error)
	updateFn func(ctx context.Context, userID, id string, in job.UpdateInput) (*model.JobApplication, error)
	deleteFn func(ctx context.Context, userID, id string) error
	statsFn  func(ctx context.Context, userID string) (*job.StatsResult, error)
}

func (m *mockJobService) List(ctx context.Context, userID string, in job.ListInput) (*job.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, in)
	}
	return &job.ListResult{}, nil
}

func (m *mockJobService) Get(ctx context.Context, userID, id string) (*model.JobApplication, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, model.NewNotFoundError()
}

func (m *mockJobService) Create(ctx context.Context, userID string, in job.CreateInput) (*model.JobApplication, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockJobService) Update(ctx context.Context, userID, id string, in job.UpdateInput) (*model.JobApplication, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, in)
	}
	return nil, nil
}

func (m *mockJobService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockJobService) Stats(ctx context.Context, userID string) (*job.StatsResult, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, userID)
	}
	return &job.StatsResult{}, nil
}

// --- テストヘルパー ---

// withUser はテスト用にリクエストコンテキストにユーザーを注入するヘルパー。
func withUser(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUser(r.Context(), &auth.User{
		ID:    userID,
		Email: userID + "@example.com",
	})
	return r.WithContext(ctx)
}

func sampleApplication() *model.JobApplication {
	return &model.JobApplication{
		ID:          "app-1",
		UserID:      "user-123",
		CompanyName: "Google",
		Role:        "Backend Engineer",
		Status:      model.StatusApplied,
		AppliedDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Notes:       "via referral",
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// decodeBody はレスポンスボディをmapとしてパースするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return result
}

// --- GET /api/jobs テスト ---

func TestJobHandler_List_Success(t *testing.T) {
	svc := &mockJobService{
		listFn: func(ctx context.Context, userID string, in job.ListInput) (*job.ListResult, error) {
			if userID != "user-123" {
				t.Errorf("userID = %q, want user-123", userID)
			}
			if in.Status != "interview" || in.Search != "goog" || in.Limit != 10 || in.Offset != 20 {
				t.Errorf("unexpected input: %+v", in)
			}
			return &job.ListResult{
				Applications: []*model.JobApplication{sampleApplication()},
				Total:        31,
				Limit:        10,
				Offset:       20,
				HasMore:      false,
			}, nil
		},
	}
	h := NewJobHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?status=interview&search=goog&limit=10&offset=20", nil)
	w := httptest.NewRecorder()
	h.List(w, withUser(req, "user-123"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	if body["success"] != true {
		t.Error("success should be true")
	}
	pagination, _ := body["pagination"].(map[string]any)
	if pagination["total"] != float64(31) {
		t.Errorf("total = %v, want 31", pagination["total"])
	}
}

func TestJobHandler_List_InvalidLimit(t *testing.T) {
	h := NewJobHandler(&mockJobService{})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?limit=abc", nil)
	w := httptest.NewRecorder()
	h.List(w, withUser(req, "user-123"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["code"] != model.ErrCodeValidation {
		t.Errorf("code = %v, want VALIDATION_ERROR", body["code"])
	}
}

// --- GET /api/jobs/:id テスト ---

func TestJobHandler_Get_NotFound(t *testing.T) {
	svc := &mockJobService{
		getFn: func(ctx context.Context, userID, id string) (*model.JobApplication, error) {
			return nil, model.NewNotFoundError()
		},
	}
	h := NewJobHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil)
	req = withChiURLParam(withUser(req, "user-123"), "id", "missing")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false || body["code"] != model.ErrCodeNotFound {
		t.Errorf("body = %v", body)
	}
}

// --- POST /api/jobs テスト ---

func TestJobHandler_Create_Success(t *testing.T) {
	svc := &mockJobService{
		createFn: func(ctx context.Context, userID string, in job.CreateInput) (*model.JobApplication, error) {
			if in.CompanyName != "Google" || in.Status != "applied" {
				t.Errorf("unexpected input: %+v", in)
			}
			return sampleApplication(), nil
		},
	}
	h := NewJobHandler(svc)

	reqBody := `{"company_name":"Google","role":"Backend Engineer","status":"applied"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewBufferString(reqBody))
	w := httptest.NewRecorder()
	h.Create(w, withUser(req, "user-123"))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]any)
	if data["id"] != "app-1" || data["applied_date"] != "2026-08-01" {
		t.Errorf("data = %v", data)
	}
}

func TestJobHandler_Create_InvalidBody(t *testing.T) {
	h := NewJobHandler(&mockJobService{})

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewBufferString("{broken"))
	w := httptest.NewRecorder()
	h.Create(w, withUser(req, "user-123"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestJobHandler_Create_ValidationError(t *testing.T) {
	svc := &mockJobService{
		createFn: func(ctx context.Context, userID string, in job.CreateInput) (*model.JobApplication, error) {
			return nil, model.NewValidationError([]model.FieldError{
				{Field: "status", Message: "statusが不正です。"},
			})
		},
	}
	h := NewJobHandler(svc)

	reqBody := `{"company_name":"Google","role":"Engineer","status":"hired"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewBufferString(reqBody))
	w := httptest.NewRecorder()
	h.Create(w, withUser(req, "user-123"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if _, ok := body["errors"]; !ok {
		t.Error("validation response should carry field errors")
	}
}

// --- PUT /api/jobs/:id テスト ---

func TestJobHandler_Update_Success(t *testing.T) {
	svc := &mockJobService{
		updateFn: func(ctx context.Context, userID, id string, in job.UpdateInput) (*model.JobApplication, error) {
			if id != "app-1" {
				t.Errorf("id = %q", id)
			}
			if in.Status == nil || *in.Status != "offer" {
				t.Errorf("status = %v, want offer", in.Status)
			}
			if in.CompanyName != nil {
				t.Error("unspecified field should stay nil")
			}
			updated := sampleApplication()
			updated.Status = model.StatusOffer
			return updated, nil
		},
	}
	h := NewJobHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/jobs/app-1", bytes.NewBufferString(`{"status":"offer"}`))
	req = withChiURLParam(withUser(req, "user-123"), "id", "app-1")
	w := httptest.NewRecorder()
	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

// --- DELETE /api/jobs/:id テスト ---

func TestJobHandler_Delete_Success(t *testing.T) {
	svc := &mockJobService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			if userID != "user-123" || id != "app-1" {
				t.Errorf("args = (%q, %q)", userID, id)
			}
			return nil
		},
	}
	h := NewJobHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/app-1", nil)
	req = withChiURLParam(withUser(req, "user-123"), "id", "app-1")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestJobHandler_Delete_StoreError(t *testing.T) {
	svc := &mockJobService{
		deleteFn: func(ctx context.Context, userID, id string) error {
			return model.NewStoreError(model.ErrCodeDeleteFailed)
		},
	}
	h := NewJobHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/app-1", nil)
	req = withChiURLParam(withUser(req, "user-123"), "id", "app-1")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decodeBody(t, w)
	if body["code"] != model.ErrCodeDeleteFailed {
		t.Errorf("code = %v, want DELETE_ERROR", body["code"])
	}
}

// --- GET /api/jobs/stats テスト ---

func TestJobHandler_Stats_Success(t *testing.T) {
	svc := &mockJobService{
		statsFn: func(ctx context.Context, userID string) (*job.StatsResult, error) {
			return &job.StatsResult{
				Stats:  model.ApplicationStats{Total: 5, Applied: 3, Interview: 1, Offer: 1},
				Recent: []*model.JobApplication{sampleApplication()},
			}, nil
		},
	}
	h := NewJobHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/stats", nil)
	w := httptest.NewRecorder()
	h.Stats(w, withUser(req, "user-123"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	data, _ := body["data"].(map[string]any)
	stats, _ := data["stats"].(map[string]any)
	if stats["total"] != float64(5) || stats["applied"] != float64(3) {
		t.Errorf("stats = %v", stats)
	}
	recent, _ := data["recent"].([]any)
	if len(recent) != 1 {
		t.Errorf("recent = %v", recent)
	}
}

// --- 未認証 ---

func TestJobHandler_List_Unauthenticated(t *testing.T) {
	h := NewJobHandler(&mockJobService{})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
