package handler

import (
	"net/http"
	"strconv"

	"fusion/internal/domain/model"
	"fusion/internal/repository"
	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文の一覧・ステータス更新・削除
// ログイン必須だがADMIN限定にはしていない（既存クライアントが一般ユーザーで呼ぶ）
type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type UpdateOrderRequest struct {
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	g := api.Group("/order", authMW...)

	g.GET("", h.list)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// GET /order?page=&limit=&orderStatus=&paymentStatus=&userId=
func (h *AdminOrderHandler) list(c echo.Context) error {
	page, err := atoiQuery(c, "page")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid page"))
	}
	limit, err := atoiQuery(c, "limit")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid limit"))
	}

	out, err := h.uc.List(c.Request().Context(), repository.OrderListFilter{
		Page:          page,
		Limit:         limit,
		UserID:        c.QueryParam("userId"),
		OrderStatus:   model.OrderStatus(c.QueryParam("orderStatus")),
		PaymentStatus: model.PaymentStatus(c.QueryParam("paymentStatus")),
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Orders fetched successfully", out)
}

func (h *AdminOrderHandler) update(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "Invalid request body"))
	}

	o, err := h.uc.UpdateStatus(c.Request().Context(), actorID, c.Param("id"), usecase.UpdateOrderStatusInput{
		OrderStatus:   req.OrderStatus,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Order updated", o)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Delete(c.Request().Context(), actorID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Order deleted", nil)
}

// 空なら0（usecase側でデフォルト）
func atoiQuery(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
