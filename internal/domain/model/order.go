package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// 注文は作成後に明細を変更しない
type Order struct {
	ID            string        `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID        string        `gorm:"type:varchar(36);not null;index" bson:"userId" json:"userId"`
	AddressID     string        `gorm:"type:varchar(36);not null" bson:"addressId" json:"addressId"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" bson:"items" json:"items"`
	TotalAmount   float64       `gorm:"type:numeric;not null" bson:"totalAmount" json:"totalAmount"`
	TransactionID string        `gorm:"type:varchar(255);not null" bson:"transactionId" json:"transactionId"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus   OrderStatus   `gorm:"type:varchar(20);not null;index" bson:"orderStatus" json:"orderStatus"`
	CreatedAt     time.Time     `gorm:"not null;index" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"not null" bson:"updatedAt" json:"updatedAt"`
}

// 表示用：価格欠損は0、画像は3枚まで
func (o Order) ForDisplay() Order {
	out := o
	out.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		if it.Price == nil {
			zero := 0.0
			it.Price = &zero
		}
		it.Images = TruncateImages(it.Images)
		out.Items[i] = it
	}
	return out
}

// 注文イベント（kafka）
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
	OrderEventDeleted       OrderEventType = "order.deleted"
)

type OrderEvent struct {
	Type          OrderEventType `json:"type"`
	OrderID       string         `json:"orderId"`
	UserID        string         `json:"userId"`
	OrderStatus   OrderStatus    `json:"orderStatus"`
	PaymentStatus PaymentStatus  `json:"paymentStatus"`
	TotalAmount   float64        `json:"totalAmount"`
	OccurredAt    time.Time      `json:"occurredAt"`
}

func NewOrderEvent(t OrderEventType, o Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:          t,
		OrderID:       o.ID,
		UserID:        o.UserID,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		OccurredAt:    at,
	}
}
