package validator

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"fusion/internal/usecase"

	playground "github.com/go-playground/validator/v10"
)

// echoのe.Validatorに登録する（c.Validateで呼ばれる）
type RequestValidator struct {
	v *playground.Validate
}

func NewRequestValidator() *RequestValidator {
	v := playground.New()

	//エラーメッセージはjsonのフィールド名で出す
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ves playground.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	fe := ves[0]
	if msg, ok := customMessage(fieldTag(reflect.TypeOf(i), fe.StructNamespace(), "msg"), fe.Tag()); ok {
		return usecase.NewHTTPError(http.StatusBadRequest, msg)
	}
	return usecase.NewHTTPError(http.StatusBadRequest, elementPrefix(fe.Namespace())+message(fe))
}

// msgタグ
//   "メッセージ"                 どの違反でもこれを返す
//   "required=...;min=..."      違反したtagごと
func customMessage(tag, failed string) (string, bool) {
	if tag == "" {
		return "", false
	}
	if !strings.Contains(tag, "=") {
		return tag, true
	}
	for _, part := range strings.Split(tag, ";") {
		name, msg, ok := strings.Cut(part, "=")
		if ok && strings.TrimSpace(name) == failed {
			return msg, true
		}
	}
	return "", false
}

// "Req.Items[0].Price" をたどってフィールドのstruct tagを取る
func fieldTag(root reflect.Type, structNS string, key string) string {
	parts := strings.Split(structNS, ".")
	if len(parts) < 2 {
		return ""
	}

	t := root
	var f reflect.StructField
	for _, name := range parts[1:] {
		for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return ""
		}
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		var ok bool
		f, ok = t.FieldByName(name)
		if !ok {
			return ""
		}
		t = f.Type
	}
	return f.Tag.Get(key)
}

// 配列要素のエラーは "items[0]: " を前に付ける
func elementPrefix(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[1:len(parts)-1], ".") + ": "
}

// 最初の1件だけ返す
func message(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
