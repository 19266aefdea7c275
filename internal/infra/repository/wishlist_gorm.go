package repository

import (
	"context"
	"errors"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type wishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) repo.WishlistRepository {
	return &wishlistGormRepository{db: db}
}

func (r *wishlistGormRepository) FindByUserID(ctx context.Context, userID string) (model.Wishlist, error) {
	var w model.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("added_at desc")
		}).
		Where("user_id = ?", userID).
		First(&w).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Wishlist{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Wishlist{}, err
	}
	return w, nil
}

// (wishlist_id, product_id) のunique制約で重複を弾く
func (r *wishlistGormRepository) AddProduct(ctx context.Context, userID string, productID string, addedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := model.Wishlist{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: addedAt,
			UpdatedAt: addedAt,
		}
		//無ければ作る（同時作成はDO NOTHING）
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
			Create(&w).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
			return err
		}

		item := model.WishlistItem{
			ID:         uuid.NewString(),
			WishlistID: w.ID,
			ProductID:  productID,
			AddedAt:    addedAt,
		}
		if err := tx.Create(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return repo.ErrDuplicate
			}
			return err
		}

		return tx.Model(&model.Wishlist{}).Where("id = ?", w.ID).Update("updated_at", addedAt).Error
	})
}

func (r *wishlistGormRepository) RemoveProduct(ctx context.Context, userID string, productID string) error {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND wishlist_id IN (?)", productID,
			r.db.Model(&model.Wishlist{}).Select("id").Where("user_id = ?", userID)).
		Delete(&model.WishlistItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *wishlistGormRepository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id IN (?)", r.db.Model(&model.Wishlist{}).Select("id").Where("user_id = ?", userID)).
		Delete(&model.WishlistItem{}).Error
}
