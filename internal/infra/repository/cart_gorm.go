package repository

import (
	"context"
	"errors"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを明細つきで取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return cart, nil
}

// versionが一致したときだけcartsを更新し、明細を入れ替える
func (r *CartGormRepository) Save(ctx context.Context, cart *model.Cart) error {
	now := time.Now()
	nextVersion := cart.Version + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cart.Version == 0 {
			//新規（user_idのunique違反＝同時作成）
			row := model.Cart{
				ID:        cart.ID,
				UserID:    cart.UserID,
				Version:   nextVersion,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return repo.ErrConflict
				}
				return err
			}
		} else {
			res := tx.Model(&model.Cart{}).
				Where("id = ? AND version = ?", cart.ID, cart.Version).
				Updates(map[string]any{"version": nextVersion, "updated_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrConflict
			}

			if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
				return err
			}
		}

		if len(cart.Items) == 0 {
			return nil
		}

		items := make([]model.CartItem, len(cart.Items))
		for i, it := range cart.Items {
			it.CartID = cart.ID
			it.Position = i
			items[i] = it
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return err
	}

	cart.Version = nextVersion
	cart.UpdatedAt = now
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	return nil
}

// 明細を全削除（カートが無ければ何もしない）
func (r *CartGormRepository) ClearByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart
		err := tx.Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		//versionを進めて読み取り中の更新を競合させる
		if err := tx.Model(&model.Cart{}).
			Where("id = ?", cart.ID).
			Updates(map[string]any{"version": gorm.Expr("version + 1"), "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error
	})
}
