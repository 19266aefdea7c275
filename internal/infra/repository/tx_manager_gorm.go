package repository

import (
	"context"

	repo "fusion/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	addresses repo.AddressRepository
	products  repo.ProductRepository
	auditLogs repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository       { return r.orders }
func (r *txReposGorm) Carts() repo.CartRepository         { return r.carts }
func (r *txReposGorm) Addresses() repo.AddressRepository  { return r.addresses }
func (r *txReposGorm) Products() repo.ProductRepository   { return r.products }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:    NewOrderGormRepository(tx),
			carts:     NewCartGormRepository(tx),
			addresses: NewAddressGormRepository(tx),
			products:  NewProductGormRepository(tx),
			auditLogs: NewAuditLogGormRepository(tx),
		}
		return fn(ctx, r)
	})
}
