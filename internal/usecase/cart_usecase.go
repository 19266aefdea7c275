package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

// 競合（version不一致）時の最大試行回数
const maxCartAttempts = 3

// CartUsecase は /cart の業務ロジックです。
// カートは明細ごと1つの集約として保存します。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	ids         IDGenerator
	clock       Clock
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	ids IDGenerator,
	clock Clock,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		ids:         ids,
		clock:       clock,
	}
}

// 明細 + 合計（productはGETのときだけ現在の商品情報）
type CartItemView struct {
	model.CartItem
	TotalPrice float64        `json:"totalPrice"`
	Product    *model.Product `json:"product,omitempty"`
}

type CartView struct {
	ID        string         `json:"_id"`
	UserID    string         `json:"userId"`
	Items     []CartItemView `json:"items"`
	Subtotal  float64        `json:"subtotal"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type AddCartItemInput struct {
	ProductID string
	Size      string
	Quantity  int64
}

type UpdateCartItemInput struct {
	ProductID string
	Size      string
	Quantity  int64
}

// AddItem は (productId, size) 単位で明細をまとめて追加します。
// 2つ目の戻り値はカートを新規作成したかどうか。
func (u *CartUsecase) AddItem(ctx context.Context, userID string, in AddCartItemInput) (CartView, bool, error) {
	if in.ProductID == "" || in.Size == "" {
		return CartView{}, false, errValidation("Product ID, quantity, and size are required.")
	}
	if in.Quantity < 1 {
		return CartView{}, false, errValidation("Quantity must be at least 1.")
	}
	if in.Quantity > model.MaxLineQuantity {
		return CartView{}, false, errValidation("Quantity must be at most %d.", model.MaxLineQuantity)
	}

	p, err := u.findProduct(ctx, in.ProductID)
	if err != nil {
		return CartView{}, false, err
	}
	snap := p.Snapshot()

	cart, created, err := u.mutate(ctx, userID, true, func(c *model.Cart) error {
		//合算後も上限以内（両方とも上限以下なので加算はあふれない）
		if c.LineQuantity(in.ProductID, in.Size)+in.Quantity > model.MaxLineQuantity {
			return errValidation("Quantity must be at most %d.", model.MaxLineQuantity)
		}
		c.AddLine(u.ids.NewID(), in.ProductID, in.Size, in.Quantity, snap)
		return nil
	})
	if err != nil {
		return CartView{}, false, err
	}
	return newCartView(cart, nil), created, nil
}

// GetCart は明細ごとに現在の商品情報を付けて返します。
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartView, error) {
	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, errNotFound("Cart not found.")
	}
	if err != nil {
		return CartView{}, errInternal("Failed to fetch cart.", err)
	}

	ids := make([]string, 0, len(cart.Items))
	seen := make(map[string]struct{}, len(cart.Items))
	for _, it := range cart.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products := map[string]model.Product{}
	if len(ids) > 0 {
		list, err := u.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return CartView{}, errInternal("Failed to fetch cart.", err)
		}
		for _, p := range list {
			products[p.ID] = p
		}
	}

	return newCartView(cart, products), nil
}

// 数量を上書きし、スナップショットも取り直す
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, userID string, in UpdateCartItemInput) (CartView, error) {
	if in.ProductID == "" || in.Size == "" || in.Quantity < 1 {
		return CartView{}, errValidation("Invalid request data.")
	}
	if in.Quantity > model.MaxLineQuantity {
		return CartView{}, errValidation("Quantity must be at most %d.", model.MaxLineQuantity)
	}

	p, err := u.findProduct(ctx, in.ProductID)
	if err != nil {
		return CartView{}, err
	}
	snap := p.Snapshot()

	cart, _, err := u.mutate(ctx, userID, false, func(c *model.Cart) error {
		if !c.SetQuantity(in.ProductID, in.Size, in.Quantity, snap) {
			return errNotFound("Item not found in cart.")
		}
		return nil
	})
	if err != nil {
		return CartView{}, err
	}
	return newCartView(cart, nil), nil
}

// 明細ID + サイズが一致する行を消す
func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, itemID string, size string) (CartView, error) {
	if itemID == "" || size == "" {
		return CartView{}, errValidation("Item ID and size are required.")
	}

	cart, _, err := u.mutate(ctx, userID, false, func(c *model.Cart) error {
		if !c.RemoveLine(itemID, size) {
			return errNotFound("Item not found in cart.")
		}
		return nil
	})
	if err != nil {
		return CartView{}, err
	}
	return newCartView(cart, nil), nil
}

func (u *CartUsecase) Clear(ctx context.Context, userID string) (CartView, error) {
	cart, _, err := u.mutate(ctx, userID, false, func(c *model.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		return CartView{}, err
	}
	return newCartView(cart, nil), nil
}

// mutate は 読む→変更→version付き保存 を競合しなくなるまで繰り返します。
// fnがエラーを返したら保存せずにそのまま返す。
func (u *CartUsecase) mutate(ctx context.Context, userID string, createIfMissing bool, fn func(c *model.Cart) error) (model.Cart, bool, error) {
	for attempt := 0; attempt < maxCartAttempts; attempt++ {
		created := false
		cart, err := u.cartRepo.FindByUserID(ctx, userID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			if !createIfMissing {
				return model.Cart{}, false, errNotFound("Cart not found.")
			}
			now := u.clock.Now()
			cart = model.Cart{
				ID:        u.ids.NewID(),
				UserID:    userID,
				Items:     []model.CartItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}
			created = true
		case err != nil:
			return model.Cart{}, false, errInternal("db error", err)
		}

		if err := fn(&cart); err != nil {
			return model.Cart{}, false, err
		}

		err = u.cartRepo.Save(ctx, &cart)
		if errors.Is(err, repo.ErrConflict) {
			continue
		}
		if err != nil {
			return model.Cart{}, false, errInternal("db error", err)
		}
		return cart, created, nil
	}

	return model.Cart{}, false, NewHTTPError(http.StatusConflict, "Cart was updated by another request. Please retry.")
}

func (u *CartUsecase) findProduct(ctx context.Context, productID string) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, errNotFound("Product not found")
	}
	if err != nil {
		return model.Product{}, errInternal("db error", err)
	}
	return p, nil
}

func newCartView(c model.Cart, products map[string]model.Product) CartView {
	items := make([]CartItemView, 0, len(c.Items))
	for _, it := range c.Items {
		v := CartItemView{CartItem: it, TotalPrice: it.TotalPrice()}
		if p, ok := products[it.ProductID]; ok {
			p := p
			v.Product = &p
		}
		items = append(items, v)
	}
	return CartView{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     items,
		Subtotal:  c.Subtotal(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
