// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/jobtrack/internal/model"
)

// ListFilter は応募レコード一覧の絞り込み条件を表す。
type ListFilter struct {
	// Status は選考状態の完全一致フィルタ。空の場合は全状態。
	Status model.Status
	// Search は会社名または職種名に対する大文字小文字を区別しない部分一致。
	Search string
	// Limit は1ページの件数。呼び出し側で1〜100にクランプ済みであること。
	Limit int
	// Offset は読み飛ばす件数。非負であること。
	Offset int
}

// JobApplicationRepository は応募レコードの永続化インターフェース。
// すべての読み書きはuser_idで暗黙にスコープされる。
type JobApplicationRepository interface {
	// FindByIDAndUser は指定IDかつ指定ユーザー所有のレコードを取得する。
	// 存在しない場合・他ユーザー所有の場合はどちらもnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.JobApplication, error)

	// List はユーザーのレコードをapplied_date降順（同日時はcreated_at降順）で
	// ページ取得し、フィルタ適用後の総件数とあわせて返す。
	List(ctx context.Context, userID string, filter ListFilter) ([]*model.JobApplication, int, error)

	// Create はレコードを作成する。created_at/updated_atはストアが設定し、
	// appに書き戻される。
	Create(ctx context.Context, app *model.JobApplication) error

	// Update はレコードの可変フィールドを上書きする。
	// id+user_idの両方が一致する行のみが対象。updated_atはストアが更新し、
	// appに書き戻される。対象行が存在しない場合はsql.ErrNoRowsを返す。
	Update(ctx context.Context, app *model.JobApplication) error

	// Delete は指定IDかつ指定ユーザー所有のレコードを削除する。
	// 削除された場合はtrueを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)

	// Stats はユーザーのレコード総数と状態別件数を1回のスキャンで集計する。
	Stats(ctx context.Context, userID string) (*model.ApplicationStats, error)

	// ListRecent はユーザーのレコードをcreated_at降順でlimit件返す。
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.JobApplication, error)

	// DeleteByUserID はユーザーの全レコードを削除する。退会処理用。
	DeleteByUserID(ctx context.Context, userID string) error
}
