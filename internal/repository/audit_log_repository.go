package repository

import (
	"context"
	"time"

	"fusion/internal/domain/model"
)

// 監査ログの絞り込み条件（空は条件なし）
type AuditLogFilter struct {
	Page         int
	Limit        int
	ActorUserID  string
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

func (f AuditLogFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順。2つ目は条件に合う総件数
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, int64, error)
}
