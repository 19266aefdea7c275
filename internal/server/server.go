package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fusion/internal/config"
	"fusion/internal/handler"
	"fusion/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// NewEcho は共通ミドルウェアを載せたechoを返します。
func NewEcho(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// 本番以外は500の詳細をレスポンスに載せる
	e.Debug = !cfg.IsProduction()
	e.Logger.SetLevel(log.INFO)
	e.Logger.SetHeader("${time_rfc3339} ${level} [API]")

	e.Validator = validator.NewRequestValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Warnf("%s %s %d %s err=%v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s %s", v.Method, v.URI, v.Status, v.Latency, v.RemoteIP)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.ContextTimeout(requestTimeout))

	return e
}

// Startはctxが終わるまで待ち受け、その後graceful shutdownします。
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		e.Logger.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.Logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
