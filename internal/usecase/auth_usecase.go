package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"fusion/internal/auth"
	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateSignup(ctx context.Context, username, email, password string) error
	ValidateLogin(ctx context.Context, email, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
	ValidateForgotPassword(ctx context.Context, email string) error
	ValidateResetPassword(ctx context.Context, token, newPassword string) error
}

type TokenPair struct {
	AccessToken          string    `json:"accessToken"`
	RefreshToken         string    `json:"refreshToken"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
}

type ForceLogoutResult struct {
	UserID          string `json:"userId"`
	NewTokenVersion int    `json:"newTokenVersion"`
}

type AuthDeps struct {
	Users         repo.UserRepository
	RefreshTokens repo.RefreshTokenRepository
	AuditLogs     repo.AuditLogRepository
	Tokens        TokenIssuer
	Hasher        PasswordHasher
	Validator     AuthValidator
	Mailer        Mailer
	IDs           IDGenerator
	Clock         Clock
	Logger        Logger
	// メールのリンク先（末尾に /<token> を付ける）
	ResetURLBase string
}

type AuthUsecase struct {
	users        repo.UserRepository
	rtRepo       repo.RefreshTokenRepository
	auditRepo    repo.AuditLogRepository
	tokens       TokenIssuer
	hasher       PasswordHasher
	validator    AuthValidator
	mailer       Mailer
	ids          IDGenerator
	clock        Clock
	logger       Logger
	resetURLBase string

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthUsecase(d AuthDeps) *AuthUsecase {
	return &AuthUsecase{
		users:        d.Users,
		rtRepo:       d.RefreshTokens,
		auditRepo:    d.AuditLogs,
		tokens:       d.Tokens,
		hasher:       d.Hasher,
		validator:    d.Validator,
		mailer:       d.Mailer,
		ids:          d.IDs,
		clock:        d.Clock,
		logger:       d.Logger,
		resetURLBase: strings.TrimRight(d.ResetURLBase, "/"),
	}
}

func (u *AuthUsecase) Signup(ctx context.Context, username, email, password string) (TokenPair, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateSignup(ctx, username, email, password); err != nil {
		return TokenPair{}, asValidation(err)
	}

	//パスワードは必ずハッシュ化して保存
	pwHash, err := u.hasher.Hash(password)
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.ids.NewID(),
		Username:     strings.TrimSpace(username),
		Email:        normalizeEmail(email),
		PasswordHash: pwHash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return TokenPair{}, NewHTTPError(http.StatusConflict, "User already exists")
		}
		return TokenPair{}, errInternal("Server error", err)
	}

	return u.issueTokens(ctx, *user)
}

// 存在しないemailとパスワード違いは同じエラー・同じくらいの時間
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (TokenPair, error) {
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return TokenPair{}, asValidation(err)
	}

	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		u.hasher.Verify(password, u.dummy())
		return TokenPair{}, errInvalidCredentials
	}
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}

	if !u.hasher.Verify(password, user.PasswordHash) {
		return TokenPair{}, errInvalidCredentials
	}

	return u.issueTokens(ctx, *user)
}

// Refresh は提示されたtokenを使用済みにして新しいペアを返す（rotate-on-use）
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshToken); err != nil {
		return TokenPair{}, asValidation(err)
	}

	claims, err := u.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	user, err := u.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, repo.ErrNotFound) {
		return TokenPair{}, NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}
	if claims.TokenVersion != user.TokenVersion {
		return TokenPair{}, NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	access, accessExp, err := u.tokens.IssueAccess(*user)
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}
	next, nextExp, err := u.tokens.IssueRefresh(*user)
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}

	//保存中のhashと一致したときだけ入れ替える
	ok, err := u.rtRepo.Rotate(ctx, auth.HashToken(refreshToken), model.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(next),
		ExpiresAt: nextExp,
		CreatedAt: u.clock.Now(),
	})
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}
	if !ok {
		return TokenPair{}, NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return TokenPair{AccessToken: access, RefreshToken: next, AccessTokenExpiresAt: accessExp}, nil
}

// 保存中のrefresh tokenを消す
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if err := u.validator.ValidateRefresh(ctx, refreshToken); err != nil {
		return asValidation(err)
	}

	claims, err := u.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	stored, err := u.rtRepo.FindByUserID(ctx, claims.Subject)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	if err != nil {
		return errInternal("Server error", err)
	}
	if stored.TokenHash != auth.HashToken(refreshToken) {
		return NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	if err := u.rtRepo.DeleteByUserID(ctx, claims.Subject); err != nil {
		return errInternal("Server error", err)
	}
	return nil
}

// アカウントの有無に関わらず成功を返す
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	if err := u.validator.ValidateForgotPassword(ctx, email); err != nil {
		return asValidation(err)
	}

	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errInternal("Server error", err)
	}

	token, _, err := u.tokens.IssueReset(*user)
	if err != nil {
		return errInternal("Server error", err)
	}

	if err := u.mailer.SendPasswordReset(ctx, user.Email, u.resetURLBase+"/"+token); err != nil {
		u.logger.Warnf("password reset mail to user %s failed: %v", user.ID, err)
	}
	return nil
}

// リセット後はtoken versionが上がるので同じreset tokenは使えない
func (u *AuthUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := u.validator.ValidateResetPassword(ctx, token, newPassword); err != nil {
		return asValidation(err)
	}

	claims, err := u.tokens.ParseReset(token)
	if err != nil {
		return NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	user, err := u.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	if err != nil {
		return errInternal("Server error", err)
	}
	if claims.TokenVersion != user.TokenVersion {
		return NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	pwHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return errInternal("Server error", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, pwHash); err != nil {
		return errInternal("Server error", err)
	}
	if err := u.rtRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return errInternal("Server error", err)
	}
	return nil
}

// 管理者による強制ログアウト（発行済みtokenを全部無効にする）
func (u *AuthUsecase) ForceLogout(ctx context.Context, actorUserID string, targetUserID string) (ForceLogoutResult, error) {
	if strings.TrimSpace(targetUserID) == "" {
		return ForceLogoutResult{}, errValidation("invalid user id")
	}

	before, err := u.users.FindByID(ctx, targetUserID)
	if errors.Is(err, repo.ErrNotFound) {
		return ForceLogoutResult{}, errNotFound("User not found")
	}
	if err != nil {
		return ForceLogoutResult{}, errInternal("Server error", err)
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		return ForceLogoutResult{}, errInternal("Server error", err)
	}
	if err := u.rtRepo.DeleteByUserID(ctx, targetUserID); err != nil {
		return ForceLogoutResult{}, errInternal("Server error", err)
	}

	newVersion := before.TokenVersion + 1
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ID:           u.ids.NewID(),
		ActorUserID:  actorUserID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   tokenVersionJSON(before.TokenVersion),
		AfterJSON:    tokenVersionJSON(newVersion),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return ForceLogoutResult{}, errInternal("Server error", err)
	}

	return ForceLogoutResult{UserID: targetUserID, NewTokenVersion: newVersion}, nil
}

// access/refreshを発行し、refreshのhashで保存中のものを上書きする
func (u *AuthUsecase) issueTokens(ctx context.Context, user model.User) (TokenPair, error) {
	access, accessExp, err := u.tokens.IssueAccess(user)
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}
	refresh, refreshExp, err := u.tokens.IssueRefresh(user)
	if err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}

	if err := u.rtRepo.Replace(ctx, model.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(refresh),
		ExpiresAt: refreshExp,
		CreatedAt: u.clock.Now(),
	}); err != nil {
		return TokenPair{}, errInternal("Server error", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, AccessTokenExpiresAt: accessExp}, nil
}

// 未登録emailでも1回bcryptを走らせるためのhash
func (u *AuthUsecase) dummy() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("not-a-real-password")
		if err == nil {
			u.dummyHash = h
		}
	})
	return u.dummyHash
}

// validatorのエラーはHTTPErrorならそのまま、それ以外は400
func asValidation(err error) error {
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return NewHTTPError(http.StatusBadRequest, err.Error())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func tokenVersionJSON(tv int) string {
	return `{"tokenVersion":` + strconv.Itoa(tv) + `}`
}
