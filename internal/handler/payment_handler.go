package handler

import (
	"net/http"

	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// amountはルピー
type CreatePaymentOrderRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// フィールド名はRazorpay Checkoutの戻り値そのまま
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	OrderID           string `json:"orderId"`
}

func (h *PaymentHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	g := api.Group("/payment", authMW...)

	g.POST("/order", h.createOrder)
	g.POST("/verify", h.verify)
}

func (h *PaymentHandler) createOrder(c echo.Context) error {
	var req CreatePaymentOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	po, err := h.uc.CreateOrder(c.Request().Context(), req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Payment order created", po)
}

func (h *PaymentHandler) verify(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req VerifyPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	err := h.uc.Verify(c.Request().Context(), userID, usecase.VerifyPaymentInput{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
		OrderID:        req.OrderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Order placed successfully", nil)
}
