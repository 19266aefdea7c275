package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /order のユーザー向けAPI
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// quantity/priceは数値でも文字列でも受ける
type OrderItemRequest struct {
	ProductID string      `json:"productId" validate:"required"`
	Name      string      `json:"name" validate:"required"`
	Images    []string    `json:"images" validate:"required"`
	Size      string      `json:"size" validate:"required"`
	Quantity  json.Number `json:"quantity" validate:"required"`
	Price     json.Number `json:"price" validate:"required"`
}

type CreateOrderRequest struct {
	UserAddressID string             `json:"userAddressId"`
	TransactionID string             `json:"transactionId"`
	PaymentStatus string             `json:"paymentStatus"`
	OrderStatus   string             `json:"orderStatus"`
	Items         []OrderItemRequest `json:"items" validate:"min=1,dive" msg:"No items provided"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	g := api.Group("/order", authMW...)

	g.POST("/create", h.create)
	g.GET("/user", h.listMine)
	g.GET("/:id", h.detail)
	g.GET("/invoice/:id", h.invoice)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	items := make([]usecase.CreateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CreateOrderItemInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Images:    it.Images,
			Size:      it.Size,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	o, err := h.uc.Create(c.Request().Context(), userID, usecase.CreateOrderInput{
		AddressID:     req.UserAddressID,
		TransactionID: req.TransactionID,
		PaymentStatus: req.PaymentStatus,
		OrderStatus:   req.OrderStatus,
		Items:         items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "Order created successfully", o)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	orders, err := h.uc.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Orders fetched successfully", orders)
}

func (h *OrderHandler) detail(c echo.Context) error {
	o, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Order fetched successfully", o)
}

// PDFをそのまま返す（成功時はenvelopeなし）
func (h *OrderHandler) invoice(c echo.Context) error {
	inv, err := h.uc.Invoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", inv.Filename))
	return c.Blob(http.StatusOK, "application/pdf", inv.Body)
}
