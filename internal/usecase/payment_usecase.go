package usecase

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

const paymentCurrency = "INR"

type PaymentUsecase struct {
	gateway   PaymentGateway
	orderRepo repo.OrderRepository
	ids       IDGenerator
}

func NewPaymentUsecase(gateway PaymentGateway, orderRepo repo.OrderRepository, ids IDGenerator) *PaymentUsecase {
	return &PaymentUsecase{gateway: gateway, orderRepo: orderRepo, ids: ids}
}

type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	// 支払い済みにする注文（任意）
	OrderID string
}

// amountはルピー。ゲートウェイにはパイサで渡す
func (u *PaymentUsecase) CreateOrder(ctx context.Context, amount float64) (model.PaymentOrder, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.PaymentOrder{}, errValidation("amount must be greater than 0")
	}

	paise := int64(math.Round(amount * 100))
	po, err := u.gateway.CreateOrder(ctx, paise, paymentCurrency, "order_rcptid_"+u.ids.NewID())
	if err != nil {
		return model.PaymentOrder{}, errInternal("Failed to create order", err)
	}
	return po, nil
}

// 署名が合えばOrderIDの注文をPaidにする
func (u *PaymentUsecase) Verify(ctx context.Context, userID string, in VerifyPaymentInput) error {
	if in.GatewayOrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return errValidation("razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
	}
	if !u.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return NewHTTPError(http.StatusBadRequest, "Payment verification failed")
	}

	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		return nil
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && o.UserID != userID) {
		return errNotFound("Order not found")
	}
	if err != nil {
		return errInternal("Server error", err)
	}

	if err := u.orderRepo.MarkPaid(ctx, orderID, in.PaymentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("Order not found")
		}
		return errInternal("Server error", err)
	}
	return nil
}
