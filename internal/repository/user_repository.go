package repository

import (
	"context"

	"fusion/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrDuplicate）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//パスワードを差し替えてtoken_versionを+1
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID string) error
}
