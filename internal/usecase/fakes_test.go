package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
	"fusion/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// ID / Clock / Logger
// =====================

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// HTTPErrorのstatusを取り出す
func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "want *HTTPError, got %v", err)
	return he.Status
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "want *HTTPError, got %v", err)
	return he.Message
}

// =====================
// Products (mock)
// =====================

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *productRepoMock) SetStock(ctx context.Context, id string, stock int64) error {
	return m.Called(ctx, id, stock).Error(0)
}

func (m *productRepoMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// =====================
// Carts (in-memory, versionつき)
// =====================

type memCarts struct {
	mu     sync.Mutex
	byUser map[string]model.Cart
}

func newMemCarts() *memCarts {
	return &memCarts{byUser: map[string]model.Cart{}}
}

func cloneCart(c model.Cart) model.Cart {
	c.Items = append([]model.CartItem{}, c.Items...)
	return c
}

func (m *memCarts) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byUser[userID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return cloneCart(c), nil
}

func (m *memCarts) Save(ctx context.Context, c *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byUser[c.UserID]
	if c.Version == 0 && ok {
		return repo.ErrConflict
	}
	if c.Version > 0 && (!ok || cur.Version != c.Version) {
		return repo.ErrConflict
	}
	c.Version++
	m.byUser[c.UserID] = cloneCart(*c)
	return nil
}

func (m *memCarts) ClearByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byUser[userID]
	if !ok {
		return nil
	}
	c.Items = []model.CartItem{}
	c.Version++
	m.byUser[userID] = c
	return nil
}

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) Save(ctx context.Context, c *model.Cart) error {
	return m.Called(ctx, c).Error(0)
}

func (m *cartRepoMock) ClearByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// =====================
// Orders (in-memory)
// =====================

type memOrders struct {
	mu   sync.Mutex
	byID map[string]model.Order
}

func newMemOrders() *memOrders {
	return &memOrders{byID: map[string]model.Order{}}
}

func (m *memOrders) Create(ctx context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[o.ID] = *o
	return nil
}

func (m *memOrders) FindByID(ctx context.Context, id string) (model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memOrders) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Order
	for _, o := range m.byID {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.OrderStatus != "" && o.OrderStatus != f.OrderStatus {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	start := f.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *memOrders) UpdateStatus(ctx context.Context, id string, os model.OrderStatus, ps model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	o.OrderStatus = os
	o.PaymentStatus = ps
	m.byID[id] = o
	return nil
}

func (m *memOrders) MarkPaid(ctx context.Context, id string, txnID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	o.PaymentStatus = model.PaymentStatusPaid
	o.TransactionID = txnID
	m.byID[id] = o
	return nil
}

func (m *memOrders) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// =====================
// Addresses (in-memory)
// =====================

type memAddresses struct {
	mu   sync.Mutex
	byID map[string]model.Address
}

func newMemAddresses(list ...model.Address) *memAddresses {
	m := &memAddresses{byID: map[string]model.Address{}}
	for _, a := range list {
		m.byID[a.ID] = a
	}
	return m
}

func (m *memAddresses) Create(ctx context.Context, a model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[a.ID] = a
	return nil
}

func (m *memAddresses) ListByUserID(ctx context.Context, userID string) ([]model.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Address
	for _, a := range m.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAddresses) FindByID(ctx context.Context, id string) (model.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

func (m *memAddresses) Update(ctx context.Context, a model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[a.ID]
	if !ok || cur.UserID != a.UserID {
		return repo.ErrNotFound
	}
	m.byID[a.ID] = a
	return nil
}

func (m *memAddresses) Delete(ctx context.Context, id string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok || cur.UserID != userID {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// =====================
// Audit logs (in-memory)
// =====================

type memAudits struct {
	mu   sync.Mutex
	logs []model.AuditLog
}

func (m *memAudits) Create(ctx context.Context, l model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, l)
	return nil
}

func (m *memAudits) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hit []model.AuditLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		if f.ActorUserID != "" && l.ActorUserID != f.ActorUserID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.ResourceType != "" && l.ResourceType != f.ResourceType {
			continue
		}
		if f.ResourceID != "" && l.ResourceID != f.ResourceID {
			continue
		}
		hit = append(hit, l)
	}

	start := min(f.Offset(), len(hit))
	end := min(start+f.Limit, len(hit))
	return append([]model.AuditLog{}, hit[start:end]...), int64(len(hit)), nil
}

// =====================
// Tx
// =====================

type fakeTxRepos struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	addresses repo.AddressRepository
	products  repo.ProductRepository
	audits    repo.AuditLogRepository
}

func (r *fakeTxRepos) Orders() repo.OrderRepository       { return r.orders }
func (r *fakeTxRepos) Carts() repo.CartRepository         { return r.carts }
func (r *fakeTxRepos) Addresses() repo.AddressRepository  { return r.addresses }
func (r *fakeTxRepos) Products() repo.ProductRepository   { return r.products }
func (r *fakeTxRepos) AuditLogs() repo.AuditLogRepository { return r.audits }

// WithinTx の中で渡す repos を固定して unit テストを回す
type fakeTxManager struct {
	repos *fakeTxRepos
	calls int
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.TxRepos) error) error {
	m.calls++
	return fn(ctx, m.repos)
}

// =====================
// Ports
// =====================

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishOrderEvent(ctx context.Context, ev model.OrderEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type invoiceMock struct{ mock.Mock }

func (m *invoiceMock) Render(o model.Order, addr *model.Address, email string) ([]byte, error) {
	args := m.Called(o, addr, email)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type gatewayMock struct{ mock.Mock }

func (m *gatewayMock) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (model.PaymentOrder, error) {
	args := m.Called(ctx, amount, currency, receipt)
	po, _ := args.Get(0).(model.PaymentOrder)
	return po, args.Error(1)
}

func (m *gatewayMock) VerifySignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}

// =====================
// Users / Refresh tokens (in-memory)
// =====================

type memUsers struct {
	mu   sync.Mutex
	byID map[string]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]model.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.byID {
		if cur.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) UpdatePassword(ctx context.Context, id string, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = hash
	u.TokenVersion++
	m.byID[id] = u
	return nil
}

func (m *memUsers) IncrementTokenVersion(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.TokenVersion++
	m.byID[id] = u
	return nil
}

type memRefreshTokens struct {
	mu     sync.Mutex
	byUser map[string]model.RefreshToken
}

func newMemRefreshTokens() *memRefreshTokens {
	return &memRefreshTokens{byUser: map[string]model.RefreshToken{}}
}

func (m *memRefreshTokens) Replace(ctx context.Context, t model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[t.UserID] = t
	return nil
}

func (m *memRefreshTokens) FindByUserID(ctx context.Context, userID string) (model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byUser[userID]
	if !ok {
		return model.RefreshToken{}, repo.ErrNotFound
	}
	return t, nil
}

func (m *memRefreshTokens) Rotate(ctx context.Context, oldHash string, next model.RefreshToken) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byUser[next.UserID]
	if !ok || cur.TokenHash != oldHash {
		return false, nil
	}
	m.byUser[next.UserID] = next
	return true, nil
}

func (m *memRefreshTokens) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, userID)
	return nil
}

// =====================
// Wishlists (in-memory)
// =====================

type memWishlists struct {
	mu     sync.Mutex
	byUser map[string]model.Wishlist
}

func newMemWishlists() *memWishlists {
	return &memWishlists{byUser: map[string]model.Wishlist{}}
}

func (m *memWishlists) FindByUserID(ctx context.Context, userID string) (model.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byUser[userID]
	if !ok {
		return model.Wishlist{}, repo.ErrNotFound
	}
	w.Items = append([]model.WishlistItem{}, w.Items...)
	return w, nil
}

func (m *memWishlists) AddProduct(ctx context.Context, userID, productID string, addedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byUser[userID]
	if !ok {
		w = model.Wishlist{ID: "w-" + userID, UserID: userID}
	}
	if w.Contains(productID) {
		return repo.ErrDuplicate
	}
	w.Items = append(w.Items, model.WishlistItem{ProductID: productID, AddedAt: addedAt})
	m.byUser[userID] = w
	return nil
}

func (m *memWishlists) RemoveProduct(ctx context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byUser[userID]
	if !ok || !w.Contains(productID) {
		return repo.ErrNotFound
	}
	kept := w.Items[:0:0]
	for _, it := range w.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	w.Items = kept
	m.byUser[userID] = w
	return nil
}

func (m *memWishlists) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.byUser[userID]; ok {
		w.Items = nil
		m.byUser[userID] = w
	}
	return nil
}
