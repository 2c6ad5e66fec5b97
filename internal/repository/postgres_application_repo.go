package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/hitoshi/jobtrack/internal/model"
)

// PostgresApplicationRepo はPostgreSQLを使用した応募レコードリポジトリ。
// 全クエリのWHERE句にuser_idを含め、ストア側のRLSポリシーと二重で
// 所有者スコープを強制する。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

const applicationColumns = `id, user_id, company_name, role, status, applied_date, notes, created_at, updated_at`

// scanApplication は1行をmodel.JobApplicationに読み取る。
func scanApplication(row interface{ Scan(...any) error }) (*model.JobApplication, error) {
	app := &model.JobApplication{}
	var status string
	err := row.Scan(
		&app.ID, &app.UserID, &app.CompanyName, &app.Role, &status,
		&app.AppliedDate, &app.Notes, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Status = model.Status(status)
	return app, nil
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有のレコードを取得する。
// 存在しない場合・他ユーザー所有の場合はどちらもnilを返す。
func (r *PostgresApplicationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.JobApplication, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}

	return app, nil
}

// buildListWhere はListのWHERE句と引数を構築する。
// 先頭の引数は常にuser_id。
func buildListWhere(userID string, filter ListFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		conds = append(conds, "(company_name ILIKE $"+n+" OR role ILIKE $"+n+")")
	}

	return strings.Join(conds, " AND "), args
}

// List はユーザーのレコードをapplied_date降順でページ取得し、総件数とあわせて返す。
func (r *PostgresApplicationRepo) List(ctx context.Context, userID string, filter ListFilter) ([]*model.JobApplication, int, error) {
	where, args := buildListWhere(userID, filter)

	// フィルタ適用後の総件数
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_applications WHERE `+where,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	// ページ本体
	limitPos := strconv.Itoa(len(args) + 1)
	offsetPos := strconv.Itoa(len(args) + 2)
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE ` + where +
		` ORDER BY applied_date DESC, created_at DESC LIMIT $` + limitPos + ` OFFSET $` + offsetPos
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []*model.JobApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate applications: %w", err)
	}

	return apps, total, nil
}

// Create はレコードを作成する。created_at/updated_atはストアが設定する。
func (r *PostgresApplicationRepo) Create(ctx context.Context, app *model.JobApplication) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO job_applications (id, user_id, company_name, role, status, applied_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		app.ID, app.UserID, app.CompanyName, app.Role, string(app.Status), app.AppliedDate, app.Notes,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}

	return nil
}

// Update はレコードの可変フィールドを上書きする。
// updated_atはトリガーで更新されるため、RETURNINGで読み戻す。
func (r *PostgresApplicationRepo) Update(ctx context.Context, app *model.JobApplication) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE job_applications
		 SET company_name = $1, role = $2, status = $3, applied_date = $4, notes = $5
		 WHERE id = $6 AND user_id = $7
		 RETURNING updated_at`,
		app.CompanyName, app.Role, string(app.Status), app.AppliedDate, app.Notes,
		app.ID, app.UserID,
	).Scan(&app.UpdatedAt)
	if err != nil {
		// 対象行なしはsql.ErrNoRowsのまま呼び出し側に伝える
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to update application: %w", err)
	}

	return nil
}

// Delete は指定IDかつ指定ユーザー所有のレコードを削除する。
func (r *PostgresApplicationRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM job_applications WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// Stats はユーザーのレコード総数と状態別件数を1回のスキャンで集計する。
func (r *PostgresApplicationRepo) Stats(ctx context.Context, userID string) (*model.ApplicationStats, error) {
	stats := &model.ApplicationStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'applied'),
		        COUNT(*) FILTER (WHERE status = 'interview'),
		        COUNT(*) FILTER (WHERE status = 'rejected'),
		        COUNT(*) FILTER (WHERE status = 'offer')
		 FROM job_applications WHERE user_id = $1`,
		userID,
	).Scan(&stats.Total, &stats.Applied, &stats.Interview, &stats.Rejected, &stats.Offer)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	return stats, nil
}

// ListRecent はユーザーのレコードをcreated_at降順でlimit件返す。
func (r *PostgresApplicationRepo) ListRecent(ctx context.Context, userID string, limit int) ([]*model.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM job_applications
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}
	defer rows.Close()

	apps := []*model.JobApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}

	return apps, nil
}

// DeleteByUserID はユーザーの全レコードを削除する。
func (r *PostgresApplicationRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM job_applications WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete applications by user: %w", err)
	}

	return nil
}

// compile-time interface check
var _ JobApplicationRepository = (*PostgresApplicationRepo)(nil)
