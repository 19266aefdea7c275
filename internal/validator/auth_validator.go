package validator

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	repo "fusion/internal/repository"
	"fusion/internal/usecase"
)

// パスワード最低文字数
const minPasswordLength = 8

type authValidator struct {
	users repo.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repo.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateSignup(ctx context.Context, username, email, password string) error {
	// 必須チェック
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return badRequest("All fields are required")
	}
	if !isEmailLike(email) {
		return badRequest("Invalid email")
	}
	if len(password) < minPasswordLength {
		return badRequest("Password must be at least 8 characters")
	}

	// email重複チェック（同時登録はrepoのunique制約で弾く）
	_, err := v.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return usecase.NewHTTPError(http.StatusConflict, "User already exists")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return &usecase.HTTPError{Status: http.StatusInternalServerError, Message: "Server error", Err: err}
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return badRequest("Email and password are required")
	}
	return nil
}

func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return badRequest("Refresh token is required")
	}
	return nil
}

func (v *authValidator) ValidateForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return badRequest("Email is required")
	}
	return nil
}

func (v *authValidator) ValidateResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" || newPassword == "" {
		return badRequest("Token and new password are required")
	}
	if len(newPassword) < minPasswordLength {
		return badRequest("Password must be at least 8 characters")
	}
	return nil
}

func badRequest(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	a, err := mail.ParseAddress(strings.TrimSpace(s))
	return err == nil && a.Address == strings.TrimSpace(s) && strings.Contains(a.Address, ".")
}
