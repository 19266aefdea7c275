package handler

import (
	"net/http"

	"fusion/internal/middleware"
	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *usecase.AuthUsecase
}

func NewAdminUserHandler(uc *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	// ★ /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := api.Group("/admin", authMW...)
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/users/:id/force-logout", h.ForceLogout)
}

// 対象ユーザーのtoken_versionを上げてrefresh tokenも消す
func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "User logged out", res)
}
