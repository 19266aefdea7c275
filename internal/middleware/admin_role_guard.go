package middleware

import (
	"net/http"

	"fusion/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがADMINかどうかを確認します。

func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(CtxUserIDKey).(string); !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON(http.StatusUnauthorized, "Unauthorized"))
			}

			//USERは拒否、ADMINだけ許可
			role, _ := c.Get(CtxUserRoleKey).(string)
			if model.Role(role) != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, errorJSON(http.StatusForbidden, "Admin access required"))
			}

			return next(c)
		}
	}
}
