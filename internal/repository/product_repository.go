package repository

import (
	"context"

	"fusion/internal/domain/model"
)

// 一覧検索
// Sizes/Brandsはどれか1つに一致すればよい
type ProductListQuery struct {
	Page     int
	Limit    int
	Category model.Category
	MinPrice *float64
	MaxPrice *float64
	Sizes    []string
	Brands   []string
}

func (q ProductListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	//見つからないIDは無視する
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) error
	Update(ctx context.Context, p model.Product) error
	SetStock(ctx context.Context, id string, stock int64) error
	Delete(ctx context.Context, id string) error
}
