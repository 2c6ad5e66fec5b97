// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// レスポンスボディは {success:false, code, message, errors?} に整形される。
type APIError struct {
	Code    string       // エラーコード
	Message string       // エラーメッセージ
	Fields  []FieldError // フィールド単位のバリデーションエラー（VALIDATION_ERRORのみ）
}

// FieldError はフィールド単位のバリデーションエラーを表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	// 認証レイヤ
	ErrCodeNoAuthHeader      = "NO_AUTH_HEADER"
	ErrCodeInvalidAuthFormat = "INVALID_AUTH_FORMAT"
	ErrCodeInvalidToken      = "INVALID_TOKEN"
	ErrCodeAuthError         = "AUTH_ERROR"

	// バリデーション
	ErrCodeValidation = "VALIDATION_ERROR"

	// リソース
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"

	// ストア障害（詳細はログのみ、クライアントにはカテゴリだけ返す）
	ErrCodeFetchFailed  = "FETCH_ERROR"
	ErrCodeCreateFailed = "CREATE_ERROR"
	ErrCodeUpdateFailed = "UPDATE_ERROR"
	ErrCodeDeleteFailed = "DELETE_ERROR"
	ErrCodeStatsFailed  = "STATS_ERROR"

	// 未捕捉
	ErrCodeInternal = "INTERNAL_ERROR"
)

// NewNoAuthHeaderError は認証ヘッダ未指定エラーを生成する。
func NewNoAuthHeaderError() *APIError {
	return &APIError{
		Code:    ErrCodeNoAuthHeader,
		Message: "認証情報が指定されていません。",
	}
}

// NewInvalidAuthFormatError は認証ヘッダ形式不正エラーを生成する。
// Authorizationヘッダは "Bearer <token>" 形式でなければならない。
func NewInvalidAuthFormatError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidAuthFormat,
		Message: "認証ヘッダの形式が不正です。Bearer <token> 形式で指定してください。",
	}
}

// NewInvalidTokenError はトークン無効・期限切れエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidToken,
		Message: "トークンが無効か、有効期限が切れています。",
	}
}

// NewAuthError は認証処理自体の失敗エラーを生成する。
func NewAuthError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthError,
		Message: "認証処理に失敗しました。",
	}
}

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: "入力内容に誤りがあります。",
		Fields:  fields,
	}
}

// NewNotFoundError はレコード未検出エラーを生成する。
// 他ユーザー所有のレコードも同一のレスポンスになる（存在の有無を漏らさない）。
func NewNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: "指定された応募レコードが見つかりません。",
	}
}

// NewRouteNotFoundError は未定義ルートへのアクセスエラーを生成する。
func NewRouteNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeRouteNotFound,
		Message: "指定されたエンドポイントは存在しません。",
	}
}

// NewStoreError はストア障害のカテゴリエラーを生成する。
// codeにはFETCH_ERROR等のストア障害コードを指定する。
func NewStoreError(code string) *APIError {
	return &APIError{
		Code:    code,
		Message: "データベース操作に失敗しました。しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部サーバーエラーを生成する。
// detailは開発環境でのみレスポンスに含め、本番では固定メッセージにする。
func NewInternalError(detail string, development bool) *APIError {
	msg := "内部エラーが発生しました。"
	if development && detail != "" {
		msg = detail
	}
	return &APIError{
		Code:    ErrCodeInternal,
		Message: msg,
	}
}
