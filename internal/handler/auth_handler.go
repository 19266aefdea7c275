package handler

import (
	"net/http"

	"fusion/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /auth 以下（ログイン不要）
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// 空白だけ・重複などはAuthValidator側
type signupRequest struct {
	Username string `json:"username" validate:"required" msg:"All fields are required"`
	Email    string `json:"email" validate:"required" msg:"All fields are required"`
	Password string `json:"password" validate:"required,min=8" msg:"required=All fields are required;min=Password must be at least 8 characters"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required" msg:"Email and password are required"`
	Password string `json:"password" validate:"required" msg:"Email and password are required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" msg:"Refresh token is required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required" msg:"Email is required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required" msg:"Token and new password are required"`
	NewPassword string `json:"newPassword" validate:"required,min=8" msg:"required=Token and new password are required;min=Password must be at least 8 characters"`
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")

	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)
	g.POST("/forgot-password", h.forgotPassword)
	g.POST("/reset-password", h.resetPassword)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req signupRequest
	if err := bindWithMessage(c, &req, "All fields are required"); err != nil {
		return writeError(c, err)
	}

	pair, err := h.uc.Signup(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, "User registered successfully", pair)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := bindWithMessage(c, &req, "Email and password are required"); err != nil {
		return writeError(c, err)
	}

	pair, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Login successful", pair)
}

// 使ったrefresh tokenは無効になり、新しいペアを返す
func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindWithMessage(c, &req, "Refresh token is required"); err != nil {
		return writeError(c, err)
	}

	pair, err := h.uc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Token refreshed successfully", pair)
}

func (h *AuthHandler) logout(c echo.Context) error {
	var req refreshRequest
	if err := bindWithMessage(c, &req, "Refresh token is required"); err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// 登録有無に関わらず同じレスポンス
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindWithMessage(c, &req, "Email is required"); err != nil {
		return writeError(c, err)
	}

	if err := h.uc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "If that email is registered, a reset link has been sent", nil)
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindWithMessage(c, &req, "Token and new password are required"); err != nil {
		return writeError(c, err)
	}

	if err := h.uc.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, "Password has been reset successfully", nil)
}
