package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

type WishlistUsecase struct {
	wishlists repo.WishlistRepository
	products  repo.ProductRepository
	clock     Clock
}

func NewWishlistUsecase(wishlists repo.WishlistRepository, products repo.ProductRepository, clock Clock) *WishlistUsecase {
	return &WishlistUsecase{wishlists: wishlists, products: products, clock: clock}
}

// 商品 + 追加日時 + 表示用価格（画像は3枚まで）
type WishlistProduct struct {
	model.Product
	AddedAt        time.Time `json:"addedAt"`
	FormattedPrice string    `json:"formattedPrice"`
}

type WishlistPage struct {
	Products   []WishlistProduct `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

func newWishlistProduct(p model.Product, addedAt time.Time) WishlistProduct {
	p.Images = model.TruncateImages(p.Images)
	return WishlistProduct{
		Product:        p,
		AddedAt:        addedAt,
		FormattedPrice: fmt.Sprintf("₹%.2f", p.Price),
	}
}

// ページングはメモリ上で行う（1ユーザー分なので小さい）
func (u *WishlistUsecase) Get(ctx context.Context, userID string, page, limit int) (WishlistPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	w, err := u.wishlists.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return WishlistPage{Products: []WishlistProduct{}, Pagination: newPagination(0, page, limit)}, nil
	}
	if err != nil {
		return WishlistPage{}, errInternal("Error fetching wishlist", err)
	}

	products, err := u.resolve(ctx, w.Items)
	if err != nil {
		return WishlistPage{}, errInternal("Error fetching wishlist", err)
	}

	total := len(products)
	//pageが大きくても掛け算しない
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := min(start+limit, total)

	return WishlistPage{
		Products:   products[start:end],
		Pagination: newPagination(int64(total), page, limit),
	}, nil
}

func (u *WishlistUsecase) Add(ctx context.Context, userID string, productID string) (WishlistProduct, error) {
	if productID == "" {
		return WishlistProduct{}, errValidation("Invalid product ID format")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return WishlistProduct{}, errNotFound("Product not found")
	}
	if err != nil {
		return WishlistProduct{}, errInternal("Error adding to wishlist", err)
	}

	addedAt := u.clock.Now()
	err = u.wishlists.AddProduct(ctx, userID, productID, addedAt)
	if errors.Is(err, repo.ErrDuplicate) {
		return WishlistProduct{}, NewHTTPError(http.StatusBadRequest, "Product already in wishlist")
	}
	if err != nil {
		return WishlistProduct{}, errInternal("Error adding to wishlist", err)
	}

	return newWishlistProduct(p, addedAt), nil
}

// 削除後に残っている商品を返す
func (u *WishlistUsecase) Remove(ctx context.Context, userID string, productID string) ([]WishlistProduct, error) {
	if productID == "" {
		return nil, errValidation("Invalid product ID format")
	}

	err := u.wishlists.RemoveProduct(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errNotFound("Product not found in wishlist")
	}
	if err != nil {
		return nil, errInternal("Error removing from wishlist", err)
	}

	w, err := u.wishlists.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return []WishlistProduct{}, nil
	}
	if err != nil {
		return nil, errInternal("Error removing from wishlist", err)
	}
	products, err := u.resolve(ctx, w.Items)
	if err != nil {
		return nil, errInternal("Error removing from wishlist", err)
	}
	return products, nil
}

func (u *WishlistUsecase) Clear(ctx context.Context, userID string) error {
	_, err := u.wishlists.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound("Wishlist not found")
	}
	if err != nil {
		return errInternal("Error clearing wishlist", err)
	}

	if err := u.wishlists.Clear(ctx, userID); err != nil {
		return errInternal("Error clearing wishlist", err)
	}
	return nil
}

// カタログから消えた商品は除く
func (u *WishlistUsecase) resolve(ctx context.Context, items []model.WishlistItem) ([]WishlistProduct, error) {
	if len(items) == 0 {
		return []WishlistProduct{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	list, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}

	out := make([]WishlistProduct, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		out = append(out, newWishlistProduct(p, it.AddedAt))
	}
	return out, nil
}
