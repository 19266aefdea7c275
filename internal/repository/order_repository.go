package repository

import (
	"context"

	"fusion/internal/domain/model"
)

type OrderListFilter struct {
	Page          int
	Limit         int
	UserID        string
	OrderStatus   model.OrderStatus
	PaymentStatus model.PaymentStatus
}

func (f OrderListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	//新しい順
	ListByUserID(ctx context.Context, userID string) ([]model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID string, orderStatus model.OrderStatus, paymentStatus model.PaymentStatus) error
	//支払い確認後に呼ぶ
	MarkPaid(ctx context.Context, orderID string, transactionID string) error
	Delete(ctx context.Context, orderID string) error
}
