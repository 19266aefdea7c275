package handler

import (
	"net/http"

	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

type AddWishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func (h *WishlistHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	g := api.Group("/wishlist", authMW...)

	g.GET("", h.get)
	g.POST("/add", h.add)
	g.DELETE("/clear", h.clear)
	g.DELETE("/:productId", h.remove)
}

// page/limitは数値でなければデフォルト（1/10）
func (h *WishlistHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	page, err := atoiQuery(c, "page")
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := atoiQuery(c, "limit")
	if err != nil || limit < 1 {
		limit = 10
	}

	out, err := h.uc.Get(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	msg := "Wishlist fetched successfully"
	if out.Pagination.TotalItems == 0 {
		msg = "Wishlist is empty"
	}
	return respond(c, http.StatusOK, msg, out)
}

func (h *WishlistHandler) add(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddWishlistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.Add(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Product added to wishlist", p)
}

func (h *WishlistHandler) remove(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	rest, err := h.uc.Remove(c.Request().Context(), userID, c.Param("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Product removed from wishlist", rest)
}

func (h *WishlistHandler) clear(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Clear(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Wishlist cleared successfully", nil)
}
