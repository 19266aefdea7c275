package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// handlerはStatusとMessageをそのまま返す
// Errは500のときだけログ/開発環境のレスポンスに出す
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

//400
func errValidation(format string, args ...any) error {
	return NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

//404
func errNotFound(message string) error {
	return NewHTTPError(http.StatusNotFound, message)
}

//500（原因を保持）
func errInternal(message string, cause error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: message, Err: cause}
}

// 認証エラーはどれも同じ文言
var errInvalidCredentials = NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
