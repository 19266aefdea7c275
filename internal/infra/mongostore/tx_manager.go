package mongostore

import (
	"context"

	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

type txRepos struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	addresses repo.AddressRepository
	products  repo.ProductRepository
	auditLogs repo.AuditLogRepository
}

func (r *txRepos) Orders() repo.OrderRepository       { return r.orders }
func (r *txRepos) Carts() repo.CartRepository         { return r.carts }
func (r *txRepos) Addresses() repo.AddressRepository  { return r.addresses }
func (r *txRepos) Products() repo.ProductRepository   { return r.products }
func (r *txRepos) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

// transactional=false（単体mongod）のときは順番に実行するだけ。
// 途中で失敗すると前の書き込みは残る
type TxManager struct {
	client        *mongo.Client
	repos         *txRepos
	transactional bool
}

func NewTxManager(client *mongo.Client, db *mongo.Database, transactional bool) *TxManager {
	return &TxManager{
		client: client,
		repos: &txRepos{
			orders:    NewOrderRepository(db),
			carts:     NewCartRepository(db),
			addresses: NewAddressRepository(db),
			products:  NewProductRepository(db),
			auditLogs: NewAuditLogRepository(db),
		},
		transactional: transactional,
	}
}

func (tm *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.TxRepos) error) error {
	if !tm.transactional {
		return fn(ctx, tm.repos)
	}

	sess, err := tm.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	//SessionContextを渡した呼び出しだけがTxに入る
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, tm.repos)
	})
	return err
}
