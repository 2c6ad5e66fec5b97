package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/jobtrack/internal/auth"
	"github.com/hitoshi/jobtrack/internal/repository"
)

// Service はアカウント退会を処理する。
// 応募レコードを先に削除してから、認証基盤側のユーザーを削除する。
// 順序を逆にすると、ユーザー削除成功後のレコード削除失敗で
// 持ち主のいないレコードが残ってしまう。
type Service struct {
	repo    repository.JobApplicationRepository
	deleter auth.AccountDeleter
	logger  *slog.Logger
}

// NewService はServiceを生成する。
func NewService(repo repository.JobApplicationRepository, deleter auth.AccountDeleter, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		deleter: deleter,
		logger:  logger,
	}
}

// Withdraw はユーザーの全応募レコードと認証アカウントを削除する。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		s.logger.Error("応募レコードの削除に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("応募レコードの削除に失敗: %w", err)
	}

	if err := s.deleter.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("認証アカウントの削除に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("アカウントの削除に失敗: %w", err)
	}

	s.logger.Info("アカウントを削除しました", slog.String("user_id", userID))
	return nil
}
