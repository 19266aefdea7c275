package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

// 一覧のデフォルト
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	//offset計算があふれない上限
	maxPage = math.MaxInt32
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orderRepo repo.OrderRepository
	publisher OrderEventPublisher
	ids       IDGenerator
	clock     Clock
	logger    Logger
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orderRepo repo.OrderRepository,
	publisher OrderEventPublisher,
	ids IDGenerator,
	clock Clock,
	logger Logger,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		orderRepo: orderRepo,
		publisher: publisher,
		ids:       ids,
		clock:     clock,
		logger:    logger,
	}
}

type Pagination struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
}

func newPagination(total int64, page, limit int) Pagination {
	return Pagination{
		TotalItems:  total,
		TotalPages:  int64(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
		PageSize:    limit,
	}
}

type OrderPage struct {
	Orders     []model.Order `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

// 空は「変更しない」
type UpdateOrderStatusInput struct {
	OrderStatus   string
	PaymentStatus string
}

// 注文一覧（全ユーザー）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.OrderListFilter) (OrderPage, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = defaultPageLimit
	}
	if f.Page < 1 || f.Page > maxPage {
		return OrderPage{}, errValidation("invalid page")
	}
	if f.Limit < 1 || f.Limit > maxPageLimit {
		return OrderPage{}, errValidation("invalid limit")
	}
	if f.OrderStatus != "" && !f.OrderStatus.Valid() {
		return OrderPage{}, errValidation("invalid orderStatus")
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return OrderPage{}, errValidation("invalid paymentStatus")
	}

	orders, total, err := u.orderRepo.List(ctx, f)
	if err != nil {
		return OrderPage{}, errInternal("Server error", err)
	}

	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ForDisplay())
	}
	return OrderPage{Orders: out, Pagination: newPagination(total, f.Page, f.Limit)}, nil
}

// ステータス更新（遷移の制限はしない）
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorUserID string, orderID string, in UpdateOrderStatusInput) (model.Order, error) {
	now := u.clock.Now()
	var updated model.Order

	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("Order not found")
		}
		if err != nil {
			return errInternal("Server error", err)
		}

		//存在確認が先
		if in.OrderStatus == "" && in.PaymentStatus == "" {
			return errValidation("orderStatus or paymentStatus is required")
		}
		if in.OrderStatus != "" && !model.OrderStatus(in.OrderStatus).Valid() {
			return errValidation("invalid orderStatus")
		}
		if in.PaymentStatus != "" && !model.PaymentStatus(in.PaymentStatus).Valid() {
			return errValidation("invalid paymentStatus")
		}

		before := statusJSON(o.OrderStatus, o.PaymentStatus)

		if in.OrderStatus != "" {
			o.OrderStatus = model.OrderStatus(in.OrderStatus)
		}
		if in.PaymentStatus != "" {
			o.PaymentStatus = model.PaymentStatus(in.PaymentStatus)
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, o.OrderStatus, o.PaymentStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound("Order not found")
			}
			return errInternal("Server error", err)
		}
		o.UpdatedAt = now

		// 監査ログ
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.ids.NewID(),
			ActorUserID:  actorUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   before,
			AfterJSON:    statusJSON(o.OrderStatus, o.PaymentStatus),
			CreatedAt:    now,
		}); err != nil {
			return errInternal("Server error", err)
		}

		updated = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}

	publishEvent(ctx, u.publisher, u.logger, model.NewOrderEvent(model.OrderEventStatusChanged, updated, now))
	return updated.ForDisplay(), nil
}

func (u *AdminOrderUsecase) Delete(ctx context.Context, actorUserID string, orderID string) error {
	now := u.clock.Now()
	var deleted model.Order

	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("Order not found")
		}
		if err != nil {
			return errInternal("Server error", err)
		}

		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound("Order not found")
			}
			return errInternal("Server error", err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ID:           u.ids.NewID(),
			ActorUserID:  actorUserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   statusJSON(o.OrderStatus, o.PaymentStatus),
			AfterJSON:    "{}",
			CreatedAt:    now,
		}); err != nil {
			return errInternal("Server error", err)
		}

		deleted = o
		return nil
	})
	if err != nil {
		return err
	}

	publishEvent(ctx, u.publisher, u.logger, model.NewOrderEvent(model.OrderEventDeleted, deleted, now))
	return nil
}

func statusJSON(os model.OrderStatus, ps model.PaymentStatus) string {
	b, _ := json.Marshal(map[string]string{
		"orderStatus":   string(os),
		"paymentStatus": string(ps),
	})
	return string(b)
}
