package handler

import (
	"net/http"

	"fusion/internal/middleware"
	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の更新系（ADMIN限定）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// nilは未指定。imageUrlは旧クライアント用の別名
type ProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Sizes       []string `json:"sizes"`
	Category    *string  `json:"category"`
	Stock       *int64   `json:"stock" validate:"omitempty,gte=0"`
	Images      []string `json:"images"`
	ImageURL    []string `json:"imageUrl"`
	Brand       *string  `json:"brand"`
}

func (r ProductRequest) input() usecase.ProductInput {
	images := r.Images
	if len(images) == 0 {
		images = r.ImageURL
	}
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Sizes:       r.Sizes,
		Category:    r.Category,
		Stock:       r.Stock,
		Images:      images,
		Brand:       r.Brand,
	}
}

type StockUpdateRequest struct {
	Stock  *int64 `json:"stock" validate:"required,gte=0"`
	Reason string `json:"reason" validate:"required,max=255"`
}

func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	// ★ JWT必須 + token_version一致 + ADMIN限定
	mws := append(append([]echo.MiddlewareFunc{}, authMW...), middleware.AdminRoleGuard())

	api.POST("/products", h.create, mws...)
	api.PUT("/products/:id", h.update, mws...)
	api.DELETE("/products/:id", h.delete, mws...)
	api.PATCH("/products/:id/stock", h.updateStock, mws...)
}

func (h *AdminProductHandler) create(c echo.Context) error {
	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.Create(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "Product created successfully", p)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.Update(c.Request().Context(), adminID, c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Product updated successfully", p)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *AdminProductHandler) updateStock(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req StockUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.UpdateStock(c.Request().Context(), adminID, c.Param("id"), *req.Stock, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "stock updated", p)
}
