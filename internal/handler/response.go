package handler

import (
	"errors"
	"net/http"

	"fusion/internal/middleware"
	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全APIで共通のレスポンス形
type Envelope struct {
	Status  int         `json:"status"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Status: status, Success: true, Message: message, Data: data})
}

// HTTPErrorならそのstatus/message、それ以外は500
// 5xxは原因をログに出し、Debug時だけerrorに詳細を載せる
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	status := http.StatusInternalServerError
	message := "Internal Server Error"
	if he, ok := usecase.AsHTTPError(err); ok {
		status = he.Status
		message = he.Message
	}

	body := Envelope{Status: status, Message: message}
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		if c.Echo().Debug {
			body.Error = err.Error()
		}
	}
	return c.JSON(status, body)
}

// ルート未登録・Bind失敗などecho自身のエラーも同じ形にする
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		err = usecase.NewHTTPError(he.Code, msg)
	}

	if werr := writeError(c, err); werr != nil {
		c.Logger().Error(werr)
	}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	return bindWithMessage(c, req, "Invalid request body")
}

// Bind失敗時のメッセージを指定する版
func bindWithMessage(c echo.Context, req interface{}, bindMsg string) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, bindMsg)
	}
	return c.Validate(req)
}

//middleware.AuthJWT が c.Set("user_id", string) した値を取り出す
func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func unauthorized(c echo.Context) error {
	return writeError(c, usecase.NewHTTPError(http.StatusUnauthorized, "User not authenticated. Please log in."))
}
