// Package model はドメインモデルを定義する。
package model

import "time"

// JobApplication は1件の求人応募レコードを表す。
// user_idは作成時に認証済みユーザーIDで固定され、以降変更されない。
type JobApplication struct {
	ID          string
	UserID      string
	CompanyName string
	Role        string
	Status      Status
	AppliedDate time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Status は応募の選考状態を表す。
// 状態遷移に制約はなく、任意の状態から任意の状態へ変更できる。
type Status string

const (
	// StatusApplied は応募済みの状態。
	StatusApplied Status = "applied"
	// StatusInterview は面接中の状態。
	StatusInterview Status = "interview"
	// StatusRejected は不採用の状態。
	StatusRejected Status = "rejected"
	// StatusOffer は内定の状態。
	StatusOffer Status = "offer"
)

// ValidStatus は文字列が定義済みのStatusかどうかを判定する。
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusApplied, StatusInterview, StatusRejected, StatusOffer:
		return true
	}
	return false
}

// Statuses は定義済みの全Statusを返す。集計やバリデーションメッセージ用。
func Statuses() []Status {
	return []Status{StatusApplied, StatusInterview, StatusRejected, StatusOffer}
}

// ApplicationStats はユーザーの応募レコードの集計結果を表す。
type ApplicationStats struct {
	Total     int
	Applied   int
	Interview int
	Rejected  int
	Offer     int
}

// フィールド長の上限。リクエストバリデーションとサニタイズ後の再検証で共有する。
const (
	// MaxNameLen は会社名・職種名の最大文字数。
	MaxNameLen = 200
	// MaxNotesLen はメモの最大文字数。
	MaxNotesLen = 2000
)
