package handler

import (
	"net/http"
	"strconv"
	"strings"

	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/products", h.list)
	api.GET("/products/:id", h.detail)
}

// GET /products?page=&limit=&category=&minPrice=&maxPrice=&sizes=M,L&brands=Nike
func (h *ProductHandler) list(c echo.Context) error {
	page, err := atoiQuery(c, "page")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid page"))
	}
	limit, err := atoiQuery(c, "limit")
	if err != nil {
		return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid limit"))
	}

	in := usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Category: c.QueryParam("category"),
		Sizes:    listQuery(c, "sizes"),
		Brands:   listQuery(c, "brands"),
	}

	if v := c.QueryParam("minPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid minPrice"))
		}
		in.MinPrice = &f
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return writeError(c, usecase.NewHTTPError(http.StatusBadRequest, "invalid maxPrice"))
		}
		in.MaxPrice = &f
	}

	out, err := h.uc.List(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Products fetched successfully", out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Product fetched successfully", p)
}

// ?sizes=M,L と ?sizes=M&sizes=L の両方を受ける
func listQuery(c echo.Context, name string) []string {
	var out []string
	for _, v := range c.QueryParams()[name] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
