package email

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/jobtrack/internal/model"
)

// DraftType は生成するメールの種別を表す。
type DraftType string

const (
	// DraftTypeCold は新規開拓のアプローチメール。
	DraftTypeCold DraftType = "cold"
	// DraftTypeFollowup は応募後のフォローアップメール。
	DraftTypeFollowup DraftType = "followup"
	// DraftTypeReferral はリファラル依頼メール。
	DraftTypeReferral DraftType = "referral"
)

// ValidDraftType は種別が定義済みかどうかを返す。
func ValidDraftType(t DraftType) bool {
	switch t {
	case DraftTypeCold, DraftTypeFollowup, DraftTypeReferral:
		return true
	}
	return false
}

// 生成元の識別子。レスポンスのgenerated_byに入る。
const (
	GeneratedByAI       = "ai"
	GeneratedByTemplate = "template"
)

// Input はメール下書き生成のリクエスト。
type Input struct {
	Type          DraftType `json:"type" validate:"required,drafttype"`
	CompanyName   string    `json:"company_name" validate:"required,max=200"`
	Role          string    `json:"role" validate:"required,max=200"`
	YourName      string    `json:"your_name" validate:"required,max=200"`
	RecipientName string    `json:"recipient_name" validate:"omitempty,max=200"`
}

// Draft は生成されたメール下書き。
type Draft struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	GeneratedBy string `json:"generated_by"`
	// Note はテンプレートに切り替えた理由など、利用者向けの補足。
	Note string `json:"note,omitempty"`
}

// Generator はメール下書きの生成能力を表す。
//
// Generateはエラーを返さない。外部サービスに依存する実装は、
// 失敗時に必ずテンプレートへ切り替えた結果を返す契約とする。
type Generator interface {
	Generate(ctx context.Context, in Input) *Draft
	// Status は外部サービスの利用可否と説明文を返す。
	Status() (available bool, message string)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// typeが定義済みのメール種別かどうかを検証するカスタムルール
	v.RegisterValidation("drafttype", func(fl validator.FieldLevel) bool {
		return ValidDraftType(DraftType(fl.Field().String()))
	})

	return v
}

// Validate は入力を検証し、フィールド単位のエラーを返す。
func Validate(in Input) []model.FieldError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{Field: "input", Message: "入力内容が不正です。"}}
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, ve := range verrs {
		fields = append(fields, model.FieldError{
			Field:   ve.Field(),
			Message: fieldMessage(ve),
		})
	}
	return fields
}

func fieldMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "必須項目です。"
	case "max":
		return "文字数が上限を超えています。"
	case "drafttype":
		return "typeはcold、followup、referralのいずれかを指定してください。"
	default:
		return "入力内容が不正です。"
	}
}
