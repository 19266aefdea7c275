package usecase

import (
	"context"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
)

// 管理者向けの監査ログ参照
type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

type AuditLogPage struct {
	Logs       []model.AuditLog `json:"logs"`
	Pagination Pagination       `json:"pagination"`
}

// 新しい順。page/limitは注文一覧と同じ範囲
func (u *AuditLogUsecase) List(ctx context.Context, f repo.AuditLogFilter) (AuditLogPage, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = defaultPageLimit
	}
	if f.Page < 1 || f.Page > maxPage {
		return AuditLogPage{}, errValidation("invalid page")
	}
	if f.Limit < 1 || f.Limit > maxPageLimit {
		return AuditLogPage{}, errValidation("invalid limit")
	}
	if f.Action != "" && !f.Action.Valid() {
		return AuditLogPage{}, errValidation("invalid action")
	}
	if f.ResourceType != "" && !f.ResourceType.Valid() {
		return AuditLogPage{}, errValidation("invalid resourceType")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return AuditLogPage{}, errValidation("from must be before to")
	}

	logs, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogPage{}, errInternal("Server error", err)
	}
	return AuditLogPage{Logs: logs, Pagination: newPagination(total, f.Page, f.Limit)}, nil
}
