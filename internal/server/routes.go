package server

import (
	"net/http"

	"fusion/internal/handler"
	"fusion/internal/middleware"
	"fusion/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Address      *handler.AddressHandler
	Wishlist     *handler.WishlistHandler
	Payment      *handler.PaymentHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	AdminUser    *handler.AdminUserHandler
	AdminAudit   *handler.AdminAuditLogHandler
}

// 全ルートは /api 配下
func RegisterRoutes(e *echo.Echo, h Handlers, tokens middleware.AccessTokenParser, users repository.UserRepository) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// JWT必須 + token_version一致
	authMW := []echo.MiddlewareFunc{
		middleware.AuthJWT(tokens),
		middleware.TokenVersionGuard(users),
	}

	h.Auth.RegisterRoutes(api)
	h.Product.RegisterRoutes(api)

	h.Cart.RegisterRoutes(api, authMW...)
	h.Order.RegisterRoutes(api, authMW...)
	h.AdminOrder.RegisterRoutes(api, authMW...)
	h.Address.RegisterRoutes(api, authMW...)
	h.Wishlist.RegisterRoutes(api, authMW...)
	h.Payment.RegisterRoutes(api, authMW...)
	h.AdminProduct.RegisterRoutes(api, authMW...)
	h.AdminUser.RegisterRoutes(api, authMW...)
	h.AdminAudit.RegisterRoutes(api, authMW...)
}
