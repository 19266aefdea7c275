package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fusion/internal/config"
	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

type OrderUsecase struct {
	tx          repo.TransactionManager
	orderRepo   repo.OrderRepository
	addressRepo repo.AddressRepository
	cartRepo    repo.CartRepository
	userRepo    repo.UserRepository
	publisher   OrderEventPublisher
	invoices    InvoiceRenderer
	ids         IDGenerator
	clock       Clock
	logger      Logger
	pricing     string
}

// 依存が多いのでまとめて受け取る
type OrderDeps struct {
	Tx        repo.TransactionManager
	Orders    repo.OrderRepository
	Addresses repo.AddressRepository
	Carts     repo.CartRepository
	Users     repo.UserRepository
	Publisher OrderEventPublisher
	Invoices  InvoiceRenderer
	IDs       IDGenerator
	Clock     Clock
	Logger    Logger
	// config.PricingClient or config.PricingCart
	Pricing string
}

func NewOrderUsecase(d OrderDeps) *OrderUsecase {
	pricing := d.Pricing
	if pricing == "" {
		pricing = config.PricingClient
	}
	return &OrderUsecase{
		tx:          d.Tx,
		orderRepo:   d.Orders,
		addressRepo: d.Addresses,
		cartRepo:    d.Carts,
		userRepo:    d.Users,
		publisher:   d.Publisher,
		invoices:    d.Invoices,
		ids:         d.IDs,
		clock:       d.Clock,
		logger:      d.Logger,
		pricing:     pricing,
	}
}

// quantity/priceは数値でも数値文字列でも受ける
type CreateOrderItemInput struct {
	ProductID string
	Name      string
	Images    []string
	Size      string
	Quantity  json.Number
	Price     json.Number
}

type CreateOrderInput struct {
	AddressID     string
	TransactionID string
	PaymentStatus string
	OrderStatus   string
	Items         []CreateOrderItemInput
}

type Invoice struct {
	Filename string
	Body     []byte
}

// Create は明細を検証して注文を作り、同じトランザクションでカートを空にします。
func (u *OrderUsecase) Create(ctx context.Context, userID string, in CreateOrderInput) (model.Order, error) {
	if len(in.Items) == 0 {
		return model.Order{}, errValidation("No items provided")
	}
	if strings.TrimSpace(in.AddressID) == "" {
		return model.Order{}, errValidation("userAddressId is required")
	}
	if strings.TrimSpace(in.TransactionID) == "" {
		return model.Order{}, errValidation("transactionId is required")
	}

	paymentStatus := model.PaymentStatusPending
	if in.PaymentStatus != "" {
		paymentStatus = model.PaymentStatus(in.PaymentStatus)
		if !paymentStatus.Valid() {
			return model.Order{}, errValidation("invalid paymentStatus")
		}
	}
	orderStatus := model.OrderStatusProcessing
	if in.OrderStatus != "" {
		orderStatus = model.OrderStatus(in.OrderStatus)
		if !orderStatus.Valid() {
			return model.Order{}, errValidation("invalid orderStatus")
		}
	}

	items, err := u.buildItems(in.Items)
	if err != nil {
		return model.Order{}, err
	}

	if u.pricing == config.PricingCart {
		if err := u.applyCartPricing(ctx, userID, items); err != nil {
			return model.Order{}, err
		}
	}

	now := u.clock.Now()
	order := model.Order{
		ID:            u.ids.NewID(),
		UserID:        userID,
		AddressID:     in.AddressID,
		Items:         items,
		TotalAmount:   model.OrderTotal(items),
		TransactionID: in.TransactionID,
		PaymentStatus: paymentStatus,
		OrderStatus:   orderStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		addr, err := r.Addresses().FindByID(ctx, in.AddressID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && addr.UserID != userID) {
			return errNotFound("Address not found")
		}
		if err != nil {
			return errInternal("Server error", err)
		}

		if err := r.Orders().Create(ctx, &order); err != nil {
			return errInternal("Server error", err)
		}
		if err := r.Carts().ClearByUserID(ctx, userID); err != nil {
			return errInternal("Server error", err)
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	u.publish(ctx, model.NewOrderEvent(model.OrderEventCreated, order, now))
	return order, nil
}

// 明細ごとの入力チェック（エラーには何番目かを入れる）
func (u *OrderUsecase) buildItems(in []CreateOrderItemInput) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(in))
	for i, it := range in {
		switch {
		case strings.TrimSpace(it.ProductID) == "":
			return nil, errValidation("items[%d]: productId is required", i)
		case strings.TrimSpace(it.Name) == "":
			return nil, errValidation("items[%d]: name is required", i)
		case it.Images == nil:
			return nil, errValidation("items[%d]: images is required", i)
		case strings.TrimSpace(it.Size) == "":
			return nil, errValidation("items[%d]: size is required", i)
		case it.Quantity == "":
			return nil, errValidation("items[%d]: quantity is required", i)
		case it.Price == "":
			return nil, errValidation("items[%d]: price is required", i)
		}

		qty, err := it.Quantity.Int64()
		if err != nil {
			return nil, errValidation("items[%d]: quantity must be an integer", i)
		}
		if qty < 1 {
			return nil, errValidation("items[%d]: quantity must be at least 1", i)
		}
		if qty > model.MaxLineQuantity {
			return nil, errValidation("items[%d]: quantity must be at most %d", i, model.MaxLineQuantity)
		}
		price, err := it.Price.Float64()
		if err != nil {
			return nil, errValidation("items[%d]: price must be a number", i)
		}
		if price < 0 {
			return nil, errValidation("items[%d]: price must not be negative", i)
		}

		items = append(items, model.OrderItem{
			ID:        u.ids.NewID(),
			ProductID: it.ProductID,
			Name:      it.Name,
			Images:    model.TruncateImages(it.Images),
			Size:      it.Size,
			Quantity:  qty,
			Price:     &price,
		})
	}
	return items, nil
}

// cartモード：名前/画像/価格はカートのスナップショットを使う
func (u *OrderUsecase) applyCartPricing(ctx context.Context, userID string, items []model.OrderItem) error {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return errValidation("Cart is empty")
	}
	if err != nil {
		return errInternal("Server error", err)
	}

	for i := range items {
		idx := cart.IndexOf(items[i].ProductID, items[i].Size)
		if idx < 0 {
			return errValidation("items[%d]: not in cart", i)
		}
		line := cart.Items[idx]
		price := line.Price
		items[i].Name = line.Name
		items[i].Images = model.TruncateImages(line.Images)
		items[i].Price = &price
	}
	return nil
}

func (u *OrderUsecase) Get(ctx context.Context, orderID string) (model.Order, error) {
	o, err := u.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, errNotFound("Order not found")
	}
	if err != nil {
		return model.Order{}, errInternal("Server error", err)
	}
	return o.ForDisplay(), nil
}

func (u *OrderUsecase) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := u.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errInternal("Server error", err)
	}
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ForDisplay())
	}
	return out, nil
}

// Invoice は注文のPDFを作ります（住所/ユーザーが消えていても出す）
func (u *OrderUsecase) Invoice(ctx context.Context, orderID string) (Invoice, error) {
	o, err := u.Get(ctx, orderID)
	if err != nil {
		return Invoice{}, err
	}

	var addr *model.Address
	a, err := u.addressRepo.FindByID(ctx, o.AddressID)
	switch {
	case err == nil:
		addr = &a
	case !errors.Is(err, repo.ErrNotFound):
		return Invoice{}, errInternal("PDF generation failed", err)
	}

	email := ""
	user, err := u.userRepo.FindByID(ctx, o.UserID)
	switch {
	case err == nil:
		email = user.Email
	case !errors.Is(err, repo.ErrNotFound):
		return Invoice{}, errInternal("PDF generation failed", err)
	}

	body, err := u.invoices.Render(o, addr, email)
	if err != nil {
		return Invoice{}, errInternal("PDF generation failed", err)
	}
	return Invoice{
		Filename: fmt.Sprintf("invoice_%s.pdf", o.ID),
		Body:     body,
	}, nil
}

// 送信失敗は注文を失敗にしない
func (u *OrderUsecase) publish(ctx context.Context, ev model.OrderEvent) {
	publishEvent(ctx, u.publisher, u.logger, ev)
}

func publishEvent(ctx context.Context, p OrderEventPublisher, logger Logger, ev model.OrderEvent) {
	if p == nil {
		return
	}
	if err := p.PublishOrderEvent(ctx, ev); err != nil && logger != nil {
		logger.Warnf("order event %s for %s not published: %v", ev.Type, ev.OrderID, err)
	}
}
