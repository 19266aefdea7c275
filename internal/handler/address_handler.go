package handler

import (
	"net/http"

	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

// 作成時の必須チェックはusecase、ここでは形式だけ
type AddressRequest struct {
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=30"`
	Address   string `json:"address" validate:"max=255"`
	City      string `json:"city" validate:"max=100"`
	State     string `json:"state" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
	ZipCode   string `json:"zipCode" validate:"max=20"`
}

func (r AddressRequest) input() usecase.AddressInput {
	return usecase.AddressInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		Country:   r.Country,
		ZipCode:   r.ZipCode,
	}
}

func (h *AddressHandler) RegisterRoutes(api *echo.Group, authMW ...echo.MiddlewareFunc) {
	g := api.Group("/address", authMW...)

	g.POST("", h.create)
	g.GET("", h.list)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *AddressHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	a, err := h.uc.Create(c.Request().Context(), userID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "Address added successfully!", a)
}

func (h *AddressHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Addresses fetched successfully", list)
}

func (h *AddressHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	a, err := h.uc.Update(c.Request().Context(), userID, c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Address updated successfully", a)
}

func (h *AddressHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Address deleted successfully", nil)
}
