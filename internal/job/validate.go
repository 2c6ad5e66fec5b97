package job

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/jobtrack/internal/model"
)

// validate はパッケージ共有のバリデータ。
// エラーメッセージのフィールド名にはjsonタグ名を使う。
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

	// statusが定義済みの選考状態かどうかを検証するカスタムルール
	v.RegisterValidation("jobstatus", func(fl validator.FieldLevel) bool {
		return model.ValidStatus(fl.Field().String())
	})

	return v
}

// validateStruct は構造体を検証し、フィールド単位のエラー一覧を返す。
// エラーがない場合はnilを返す。
func validateStruct(in any) []model.FieldError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{Field: "", Message: "入力内容を検証できませんでした。"}}
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return fields
}

// fieldMessage はバリデーションタグごとの日本語メッセージを返す。
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須項目です。"
	case "max":
		return fmt.Sprintf("%s文字以内で指定してください。", fe.Param())
	case "datetime":
		return "YYYY-MM-DD形式で指定してください。"
	case "jobstatus":
		return statusMessage()
	}
	return "値が不正です。"
}

// statusMessage は選考状態の許容値を列挙したメッセージを返す。
func statusMessage() string {
	values := make([]string, 0, 4)
	for _, s := range model.Statuses() {
		values = append(values, string(s))
	}
	return fmt.Sprintf("%s のいずれかを指定してください。", strings.Join(values, ", "))
}
