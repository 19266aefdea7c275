package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"fusion/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
	ResetTokenTTL   = 15 * time.Minute
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
	KindReset   TokenKind = "reset"
)

var ErrInvalidToken = errors.New("invalid token")

// subにuserID、tvにtoken_version
type Claims struct {
	Role         string    `json:"role,omitempty"`
	TokenVersion int       `json:"tv"`
	Kind         TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// access/resetはJWT_SECRET、refreshはREFRESH_TOKEN_SECRETで署名
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
}

// テスト用に時計を差し替える
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenService) IssueAccess(u model.User) (string, time.Time, error) {
	return s.issue(s.accessSecret, KindAccess, u.ID, string(u.Role), u.TokenVersion, AccessTokenTTL)
}

// jtiを入れるので同じ秒に発行しても別のトークンになる
func (s *TokenService) IssueRefresh(u model.User) (string, time.Time, error) {
	return s.issue(s.refreshSecret, KindRefresh, u.ID, "", u.TokenVersion, RefreshTokenTTL)
}

func (s *TokenService) IssueReset(u model.User) (string, time.Time, error) {
	return s.issue(s.accessSecret, KindReset, u.ID, "", u.TokenVersion, ResetTokenTTL)
}

func (s *TokenService) issue(secret []byte, kind TokenKind, userID, role string, tv int, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)

	claims := Claims{
		Role:         role,
		TokenVersion: tv,
		Kind:         kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *TokenService) ParseAccess(raw string) (*Claims, error) {
	return s.parse(raw, s.accessSecret, KindAccess)
}

func (s *TokenService) ParseRefresh(raw string) (*Claims, error) {
	return s.parse(raw, s.refreshSecret, KindRefresh)
}

func (s *TokenService) ParseReset(raw string) (*Claims, error) {
	return s.parse(raw, s.accessSecret, KindReset)
}

// 署名方式・期限・種類・subを確認
func (s *TokenService) parse(raw string, secret []byte, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// 保存用のhash（平文は保存しない）
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
