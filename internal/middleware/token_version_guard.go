package middleware

import (
	"net/http"

	"fusion/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionの一致するか確認。
func TokenVersionGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "Unauthorized"))
			}

			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "Unauthorized"))
			}

			//DBから最新のuserを取得する
			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil {
				return c.JSON(http.StatusForbidden, errorJSON(http.StatusForbidden, "Invalid token"))
			}

			//強制ログアウト・パスワード再設定の後は古いトークンを拒否
			if user.TokenVersion != tv {
				return c.JSON(http.StatusForbidden, errorJSON(http.StatusForbidden, "Token has been revoked"))
			}

			return next(c)
		}
	}
}
