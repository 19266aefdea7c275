package repository

import (
	"context"
	"errors"

	"fusion/internal/domain/model"
	domainrepo "fusion/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type refreshTokenGormRepository struct {
	db *gorm.DB
}

func NewRefreshTokenGormRepository(db *gorm.DB) domainrepo.RefreshTokenRepository {
	return &refreshTokenGormRepository{db: db}
}

// user_idで上書き（upsert）
func (r *refreshTokenGormRepository) Replace(ctx context.Context, token model.RefreshToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "created_at"}),
		}).
		Create(&token).Error
}

func (r *refreshTokenGormRepository) FindByUserID(ctx context.Context, userID string) (model.RefreshToken, error) {
	var rt model.RefreshToken

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.RefreshToken{}, domainrepo.ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	return rt, nil
}

// 古いhashと一致する行だけ更新（同時refreshは片方だけ成功）
func (r *refreshTokenGormRepository) Rotate(ctx context.Context, oldHash string, next model.RefreshToken) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND token_hash = ?", next.UserID, oldHash).
		Updates(map[string]any{
			"token_hash": next.TokenHash,
			"expires_at": next.ExpiresAt,
			"created_at": next.CreatedAt,
		})

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *refreshTokenGormRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RefreshToken{}).Error
}
