package handler

import (
	"net/http"
	"time"

	"fusion/internal/domain/model"
	"fusion/internal/middleware"
	"fusion/internal/repository"
	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAdminAuditLogHandler(uc *usecase.AuditLogUsecase) *AdminAuditLogHandler {
	return &AdminAuditLogHandler{uc: uc}
}

func (h *AdminAuditLogHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	admin := api.Group("/admin", authMW...)
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/audit-logs", h.list)
}

// GET /admin/audit-logs?page=&limit=&actorUserId=&action=&resourceType=&resourceId=&from=&to=
// from/toはRFC3339
func (h *AdminAuditLogHandler) list(c echo.Context) error {
	page, err := atoiQuery(c, "page")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid page"))
	}
	limit, err := atoiQuery(c, "limit")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid limit"))
	}
	from, err := timeQuery(c, "from")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid from"))
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid to"))
	}

	out, err := h.uc.List(c.Request().Context(), repository.AuditLogFilter{
		Page:         page,
		Limit:        limit,
		ActorUserID:  c.QueryParam("actorUserId"),
		Action:       model.AuditAction(c.QueryParam("action")),
		ResourceType: model.AuditResourceType(c.QueryParam("resourceType")),
		ResourceID:   c.QueryParam("resourceId"),
		CreatedFrom:  from,
		CreatedTo:    to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Audit logs fetched successfully", out)
}

func timeQuery(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
