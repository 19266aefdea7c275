package repository

import (
	"context"
	"time"

	"fusion/internal/domain/model"
)

type WishlistRepository interface {
	//無ければErrNotFound
	FindByUserID(ctx context.Context, userID string) (model.Wishlist, error)
	//無ければ作る。既に入っていればErrDuplicate
	AddProduct(ctx context.Context, userID string, productID string, addedAt time.Time) error
	//消えなければErrNotFound
	RemoveProduct(ctx context.Context, userID string, productID string) error
	Clear(ctx context.Context, userID string) error
}
