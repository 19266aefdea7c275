package repository

import (
	"context"

	"fusion/internal/domain/model"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	Create(ctx context.Context, address model.Address) error

	//ユーザーが持つ住所一覧を返す（作成順）
	ListByUserID(ctx context.Context, userID string) ([]model.Address, error)

	FindByID(ctx context.Context, addressID string) (model.Address, error)

	//userIDが一致しないときもErrNotFound
	Update(ctx context.Context, address model.Address) error
	Delete(ctx context.Context, addressID string, userID string) error
}
