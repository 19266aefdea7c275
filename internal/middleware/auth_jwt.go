package middleware

import (
	"net/http"
	"strings"

	"fusion/internal/auth"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // string
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

type AccessTokenParser interface {
	ParseAccess(raw string) (*auth.Claims, error)
}

// bearerAuth用のJWT検証ミドルウェア。
// ヘッダが無い/形式違いは401、トークン自体が不正・期限切れは403
func AuthJWT(tokens AccessTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get(echo.HeaderAuthorization)
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "No token provided"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "No token provided"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "No token provided"))
			}

			claims, err := tokens.ParseAccess(rawToken)
			if err != nil {
				return c.JSON(http.StatusForbidden, errorJSON(http.StatusForbidden, "Invalid token"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.Subject)
			c.Set(CtxUserRoleKey, claims.Role)
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

// handler側と同じ形の失敗レスポンス
type errorResponse struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func errorJSON(status int, msg string) errorResponse {
	return errorResponse{Status: status, Message: msg}
}
