// Package job は応募レコード管理のドメインロジックを提供する。
//
// すべての操作は呼び出し元の認証済みユーザーIDでスコープされる。
// 他ユーザー所有のレコードは「存在しない」と同じ扱いになり、
// 存在の有無を外部に漏らさない。
package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
	"github.com/hitoshi/jobtrack/internal/security"
)

// appliedDateLayout はapplied_dateの入出力形式。
const appliedDateLayout = "2006-01-02"

// 一覧ページングの既定値と上限。
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// CreateInput は応募レコード作成の入力を表す。
type CreateInput struct {
	CompanyName string `json:"company_name" validate:"required,max=200"`
	Role        string `json:"role" validate:"required,max=200"`
	Status      string `json:"status" validate:"required,jobstatus"`
	AppliedDate string `json:"applied_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// UpdateInput は応募レコードの部分更新の入力を表す。
// nilのフィールドは変更しない。所有者は入力に含まれず、変更できない。
type UpdateInput struct {
	CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
	Role        *string `json:"role" validate:"omitempty,max=200"`
	Status      *string `json:"status" validate:"omitempty,jobstatus"`
	AppliedDate *string `json:"applied_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

// ListInput は一覧取得の入力を表す。
type ListInput struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// ListResult は一覧取得の結果とページング情報を表す。
type ListResult struct {
	Applications []*model.JobApplication
	Total        int
	Limit        int
	Offset       int
	HasMore      bool
}

// StatsResult はダッシュボード統計の結果を表す。
type StatsResult struct {
	Stats  model.ApplicationStats
	Recent []*model.JobApplication
}

// Service は応募レコード管理のサービス層。
type Service struct {
	repo      repository.JobApplicationRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.JobApplicationRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// List はユーザーの応募レコードをフィルタ・ページング付きで取得する。
func (s *Service) List(ctx context.Context, userID string, in ListInput) (*ListResult, error) {
	if in.Status != "" && !model.ValidStatus(in.Status) {
		return nil, model.NewValidationError([]model.FieldError{{
			Field:   "status",
			Message: statusMessage(),
		}})
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	apps, total, err := s.repo.List(ctx, userID, repository.ListFilter{
		Status: model.Status(in.Status),
		Search: in.Search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		slog.Error("failed to list applications",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(model.ErrCodeFetchFailed)
	}

	return &ListResult{
		Applications: apps,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
		HasMore:      offset+len(apps) < total,
	}, nil
}

// Get は指定IDのレコードを取得する。
// 存在しない場合・他ユーザー所有の場合はどちらもNOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.JobApplication, error) {
	app, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		slog.Error("failed to fetch application",
			slog.String("user_id", userID),
			slog.String("application_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(model.ErrCodeFetchFailed)
	}
	if app == nil {
		return nil, model.NewNotFoundError()
	}

	return app, nil
}

// Create は応募レコードを作成する。
// 所有者は常に呼び出し元のユーザーIDになり、クライアントからは指定できない。
// applied_dateを省略した場合は当日日付になる。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.JobApplication, error) {
	in.CompanyName = s.sanitizer.Sanitize(in.CompanyName)
	in.Role = s.sanitizer.Sanitize(in.Role)
	in.Notes = s.sanitizer.Sanitize(in.Notes)

	if fields := validateStruct(in); len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	appliedDate, err := parseAppliedDate(in.AppliedDate)
	if err != nil {
		// validateStructで形式検証済みのため通常は到達しない
		return nil, model.NewValidationError([]model.FieldError{{
			Field:   "applied_date",
			Message: "YYYY-MM-DD形式で指定してください。",
		}})
	}

	app := &model.JobApplication{
		ID:          uuid.NewString(),
		UserID:      userID,
		CompanyName: in.CompanyName,
		Role:        in.Role,
		Status:      model.Status(in.Status),
		AppliedDate: appliedDate,
		Notes:       in.Notes,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		slog.Error("failed to create application",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(model.ErrCodeCreateFailed)
	}

	return app, nil
}

// Update は応募レコードを部分更新する。
// 存在確認と所有者確認が先行し、どちらかを満たさない場合はNOT_FOUNDを返す。
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*model.JobApplication, error) {
	if fields := validateStruct(in); len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	app, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		slog.Error("failed to fetch application for update",
			slog.String("user_id", userID),
			slog.String("application_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(model.ErrCodeUpdateFailed)
	}
	if app == nil {
		return nil, model.NewNotFoundError()
	}

	if in.CompanyName != nil {
		app.CompanyName = s.sanitizer.Sanitize(*in.CompanyName)
	}
	if in.Role != nil {
		app.Role = s.sanitizer.Sanitize(*in.Role)
	}
	if in.Status != nil {
		app.Status = model.Status(*in.Status)
	}
	if in.AppliedDate != nil {
		appliedDate, err := parseAppliedDate(*in.AppliedDate)
		if err != nil {
			return nil, model.NewValidationError([]model.FieldError{{
				Field:   "applied_date",
				Message: "YYYY-MM-DD形式で指定してください。",
			}})
		}
		app.AppliedDate = appliedDate
	}
	if in.Notes != nil {
		app.Notes = s.sanitizer.Sanitize(*in.Notes)
	}

	// サニタイズで必須フィールドが空になった場合は更新を拒否する
	var fields []model.FieldError
	if app.CompanyName == "" {
		fields = append(fields, model.FieldError{Field: "company_name", Message: "必須項目です。"})
	}
	if app.Role == "" {
		fields = append(fields, model.FieldError{Field: "role", Message: "必須項目です。"})
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	if err := s.repo.Update(ctx, app); err != nil {
		// 確認と更新の間に行が消えた場合もNOT_FOUND扱いにする
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFoundError()
		}
		slog.Error("failed to update application",
			slog.String("user_id", userID),
			slog.String("application_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(model.ErrCodeUpdateFailed)
	}

	return app, nil
}

// Delete は応募レコードを削除する。
// 存在しないID・他ユーザー所有のIDはどちらも同じNOT_FOUNDになる。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		slog.Error("failed to delete application",
			slog.String("user_id", userID),
			slog.String("application_id", id),
			slog.String("error", err.Error()),
		)
		return model.NewStoreError(model.ErrCodeDeleteFailed)
	}
	if !deleted {
		return model.NewNotFoundError()
	}

	return nil
}

// Stats はユーザーの応募状況の集計と直近作成5件を返す。
func (s *Service) Stats(ctx context.Context, userID string) (*StatsResult, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		slog.Error("failed to aggregate stats",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(model.ErrCodeStatsFailed)
	}

	recent, err := s.repo.ListRecent(ctx, userID, 5)
	if err != nil {
		slog.Error("failed to list recent applications",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(model.ErrCodeStatsFailed)
	}

	return &StatsResult{
		Stats:  *stats,
		Recent: recent,
	}, nil
}

// parseAppliedDate は応募日文字列をパースする。空の場合は当日（UTC）を返す。
func parseAppliedDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(appliedDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid applied_date: %w", err)
	}
	return t, nil
}
