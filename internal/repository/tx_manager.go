package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	Carts() CartRepository
	Addresses() AddressRepository
	Products() ProductRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnに渡るctxで呼ばないとTxに参加しない
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error
}
