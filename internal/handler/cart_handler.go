package handler

import (
	"net/http"

	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID string `json:"productId" validate:"required" msg:"Product ID, quantity, and size are required."`
	Quantity  int64  `json:"quantity" validate:"required,min=1,max=1000" msg:"required=Product ID, quantity, and size are required.;min=Quantity must be at least 1.;max=Quantity must be at most 1000."`
	Size      string `json:"size" validate:"required" msg:"Product ID, quantity, and size are required."`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"productId" validate:"required" msg:"Invalid request data."`
	Quantity  int64  `json:"quantity" validate:"required,min=1,max=1000" msg:"required=Invalid request data.;min=Invalid request data.;max=Quantity must be at most 1000."`
	Size      string `json:"size" validate:"required" msg:"Invalid request data."`
}

// /cart 以下を登録（全部ログイン必須）
func (h *CartHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	g := api.Group("/cart", authMW...)

	g.POST("/add", h.addToCart)
	g.GET("", h.getCart)
	g.PUT("/update", h.updateItem)
	g.DELETE("/delete/:itemId/:size", h.deleteItem)
	g.DELETE("/clear", h.clear)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if err := bindWithMessage(c, &req, "Product ID, quantity, and size are required."); err != nil {
		return writeError(c, err)
	}

	out, created, err := h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartItemInput{
		ProductID: req.ProductID,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return respond(c, status, "Item added to cart successfully.", out)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Cart fetched successfully.", out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateCartItemRequest
	if err := bindWithMessage(c, &req, "Invalid request data."); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateItemQuantity(c.Request().Context(), userID, usecase.UpdateCartItemInput{
		ProductID: req.ProductID,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Cart item updated successfully.", out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, c.Param("itemId"), c.Param("size"))
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Item removed from cart successfully.", out)
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Clear(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "All items removed from cart.", out)
}
