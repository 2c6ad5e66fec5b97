package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/jobtrack/internal/email"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/security"
)

// DraftRecorder はメール生成のメトリクス通知先。
type DraftRecorder interface {
	RecordEmailDraft(generatedBy string)
}

// noopDraftRecorder はメトリクス未設定時の何もしない実装。
type noopDraftRecorder struct{}

func (noopDraftRecorder) RecordEmailDraft(string) {}

// EmailHandler はメール下書き生成のHTTPハンドラー。
type EmailHandler struct {
	generator email.Generator
	sanitizer security.TextSanitizerService
	recorder  DraftRecorder
}

// NewEmailHandler はEmailHandlerを生成する。recorderはnil可。
func NewEmailHandler(generator email.Generator, sanitizer security.TextSanitizerService, recorder DraftRecorder) *EmailHandler {
	if recorder == nil {
		recorder = noopDraftRecorder{}
	}
	return &EmailHandler{
		generator: generator,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// Status はAI生成の利用可否を返す。
// GET /api/ai/status
func (h *EmailHandler) Status(w http.ResponseWriter, r *http.Request) {
	available, message := h.generator.Status()

	writeSuccessData(w, http.StatusOK, struct {
		Available bool   `json:"available"`
		Message   string `json:"message"`
	}{Available: available, Message: message})
}

// Generate はメール下書きを生成する。
// POST /api/ai/generate-email
//
// 生成経路の失敗はGenerator内でテンプレートに切り替わるため、
// このハンドラーが5xxを返すのは入力検証より前の段階だけ。
func (h *EmailHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthError())
		return
	}

	var in email.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError([]model.FieldError{
			{Field: "body", Message: "リクエストボディの解析に失敗しました。"},
		}))
		return
	}

	in.CompanyName = h.sanitizer.Sanitize(in.CompanyName)
	in.Role = h.sanitizer.Sanitize(in.Role)
	in.YourName = h.sanitizer.Sanitize(in.YourName)
	in.RecipientName = h.sanitizer.Sanitize(in.RecipientName)

	if fields := email.Validate(in); len(fields) > 0 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError(fields))
		return
	}

	draft := h.generator.Generate(r.Context(), in)
	h.recorder.RecordEmailDraft(draft.GeneratedBy)

	writeSuccessData(w, http.StatusOK, draft)
}
