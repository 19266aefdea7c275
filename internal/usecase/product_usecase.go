package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

type ProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	ids         IDGenerator
	clock       Clock
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	ids IDGenerator,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		tx:          tx,
		productRepo: productRepo,
		ids:         ids,
		clock:       clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sizes    []string
	Brands   []string
}

type ProductPage struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

// nilは「指定なし」（更新時は変更しない）
type ProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Sizes       []string
	Category    *string
	Stock       *int64
	Images      []string
	Brand       *string
}

func (u *ProductUsecase) List(ctx context.Context, in ListProductsInput) (ProductPage, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = defaultPageLimit
	}
	if in.Page < 1 || in.Page > maxPage {
		return ProductPage{}, errValidation("invalid page")
	}
	if in.Limit < 1 || in.Limit > maxPageLimit {
		return ProductPage{}, errValidation("invalid limit")
	}
	if in.Category != "" && !model.IsValidCategory(model.Category(in.Category)) {
		return ProductPage{}, errValidation("invalid category")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductPage{}, errValidation("minPrice must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductPage{}, errValidation("maxPrice must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductPage{}, errValidation("minPrice must be <= maxPrice")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Category: model.Category(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sizes:    in.Sizes,
		Brands:   in.Brands,
	})
	if err != nil {
		return ProductPage{}, errInternal("Internal Server Error", err)
	}
	if items == nil {
		items = []model.Product{}
	}

	return ProductPage{Products: items, Pagination: newPagination(total, in.Page, in.Limit)}, nil
}

func (u *ProductUsecase) Get(ctx context.Context, productID string) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, errNotFound("Product not found")
	}
	if err != nil {
		return model.Product{}, errInternal("Internal Server Error", err)
	}
	return p, nil
}

func (u *ProductUsecase) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	var missing []string
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.Description == nil || strings.TrimSpace(*in.Description) == "" {
		missing = append(missing, "description")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if in.Category == nil || *in.Category == "" {
		missing = append(missing, "category")
	}
	if in.Stock == nil {
		missing = append(missing, "stock")
	}
	if len(in.Images) == 0 {
		missing = append(missing, "images")
	}
	if in.Brand == nil || *in.Brand == "" {
		missing = append(missing, "brand")
	}
	if len(missing) > 0 {
		return model.Product{}, errValidation("Missing required fields: %s", strings.Join(missing, ", "))
	}

	now := u.clock.Now()
	p := model.Product{
		ID:        u.ids.NewID(),
		Sizes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := in.applyTo(&p); err != nil {
		return model.Product{}, err
	}

	if err := u.productRepo.Create(ctx, p); err != nil {
		return model.Product{}, errInternal("Internal Server Error", err)
	}
	return p, nil
}

// 部分更新。在庫が変わったら監査ログも同じトランザクションで残す
func (u *ProductUsecase) Update(ctx context.Context, actorUserID string, productID string, in ProductInput) (model.Product, error) {
	var updated model.Product

	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("Product not found")
		}
		if err != nil {
			return errInternal("Internal Server Error", err)
		}

		beforeStock := p.Stock
		if err := in.applyTo(&p); err != nil {
			return err
		}
		p.UpdatedAt = u.clock.Now()

		if err := r.Products().Update(ctx, p); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound("Product not found")
			}
			return errInternal("Internal Server Error", err)
		}

		if p.Stock != beforeStock {
			if err := u.audit(ctx, r, actorUserID, productID, beforeStock, p.Stock, "product update"); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

func (u *ProductUsecase) Delete(ctx context.Context, productID string) error {
	err := u.productRepo.Delete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound("Product not found")
	}
	if err != nil {
		return errInternal("Internal Server Error", err)
	}
	return nil
}

// 在庫だけを更新（理由つきで監査ログに残す）
func (u *ProductUsecase) UpdateStock(ctx context.Context, actorUserID string, productID string, stock int64, reason string) (model.Product, error) {
	if stock < 0 {
		return model.Product{}, errValidation("stock must be >= 0")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return model.Product{}, errValidation("reason required")
	}

	var updated model.Product
	err := u.tx.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound("Product not found")
		}
		if err != nil {
			return errInternal("Internal Server Error", err)
		}

		if err := r.Products().SetStock(ctx, productID, stock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound("Product not found")
			}
			return errInternal("Internal Server Error", err)
		}

		if err := u.audit(ctx, r, actorUserID, productID, p.Stock, stock, reason); err != nil {
			return err
		}

		p.Stock = stock
		updated = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

//「誰が」「何を」「どの対象に」「どう変えたか」を残す
func (u *ProductUsecase) audit(ctx context.Context, r repo.TxRepos, actorUserID, productID string, before, after int64, reason string) error {
	beforeJSON, _ := json.Marshal(map[string]any{"stock": before})
	afterJSON, _ := json.Marshal(map[string]any{"stock": after, "reason": reason})

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ID:           u.ids.NewID(),
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return errInternal("Internal Server Error", err)
	}
	return nil
}

// 入力を検証しながらpに反映する
func (in ProductInput) applyTo(p *model.Product) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return errValidation("name must not be empty")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return errValidation("Price cannot be negative")
		}
		p.Price = *in.Price
	}
	if in.Sizes != nil {
		for _, s := range in.Sizes {
			if !model.IsValidSize(s) {
				return errValidation("invalid size: %s", s)
			}
		}
		p.Sizes = append([]string{}, in.Sizes...)
	}
	if in.Category != nil {
		if !model.IsValidCategory(model.Category(*in.Category)) {
			return errValidation("invalid category")
		}
		p.Category = model.Category(*in.Category)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return errValidation("stock must be >= 0")
		}
		p.Stock = *in.Stock
	}
	if in.Images != nil {
		p.Images = append([]string{}, in.Images...)
	}
	if in.Brand != nil {
		if !model.IsValidBrand(*in.Brand) {
			return errValidation("invalid brand")
		}
		p.Brand = *in.Brand
	}
	return nil
}
