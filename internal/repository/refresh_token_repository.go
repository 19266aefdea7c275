package repository

import (
	"context"

	"fusion/internal/domain/model"
)

// ユーザーごとに1件だけ保存する
type RefreshTokenRepository interface {
	//既存があれば上書き
	Replace(ctx context.Context, token model.RefreshToken) error
	FindByUserID(ctx context.Context, userID string) (model.RefreshToken, error)
	//oldHashが現在のものと一致したときだけ差し替える
	Rotate(ctx context.Context, oldHash string, next model.RefreshToken) (bool, error)
	DeleteByUserID(ctx context.Context, userID string) error
}
