package usecase

import (
	"context"
	"time"

	"fusion/internal/auth"
	"fusion/internal/domain/model"
)

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

type Logger interface {
	Warnf(format string, args ...interface{})
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// auth.TokenServiceが実装
type TokenIssuer interface {
	IssueAccess(u model.User) (string, time.Time, error)
	IssueRefresh(u model.User) (string, time.Time, error)
	IssueReset(u model.User) (string, time.Time, error)
	ParseRefresh(raw string) (*auth.Claims, error)
	ParseReset(raw string) (*auth.Claims, error)
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error
}

type InvoiceRenderer interface {
	Render(o model.Order, addr *model.Address, email string) ([]byte, error)
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (model.PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to string, resetURL string) error
}
