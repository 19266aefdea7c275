package repository

import (
	"context"
	"errors"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細は追加順でpreload
func preloadOrderItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	})
}

// 注文と明細をまとめて作成
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := preloadOrderItems(r.db.WithContext(ctx)).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	var orders []model.Order
	err := preloadOrderItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

// 管理用の一覧（絞り込み＋ページング）
func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.OrderStatus != "" {
		q = q.Where("order_status = ?", f.OrderStatus)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var orders []model.Order
	if err := preloadOrderItems(q).
		Order("created_at desc").
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&orders).Error; err != nil {
		return []model.Order{}, 0, err
	}
	return orders, total, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, orderStatus model.OrderStatus, paymentStatus model.PaymentStatus) error {
	return r.update(ctx, orderID, map[string]any{
		"order_status":   orderStatus,
		"payment_status": paymentStatus,
	})
}

func (r *OrderGormRepository) MarkPaid(ctx context.Context, orderID string, transactionID string) error {
	return r.update(ctx, orderID, map[string]any{
		"payment_status": model.PaymentStatusPaid,
		"transaction_id": transactionID,
	})
}

func (r *OrderGormRepository) update(ctx context.Context, orderID string, fields map[string]any) error {
	fields["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(fields)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細はON DELETE CASCADE
func (r *OrderGormRepository) Delete(ctx context.Context, orderID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
