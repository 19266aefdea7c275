package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"fusion/internal/domain/model"
	"fusion/internal/handler"
	repo "fusion/internal/repository"
	"fusion/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// echo / request helper
// =====================

var testNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

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

type nopLogger struct{}

func (nopLogger) Warnf(format string, args ...interface{}) {}

func newTestEcho() (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validator.NewRequestValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	return e, e.Group("/api")
}

// AuthJWTの代わりに X-Test-User をuser_idとして入れる
func testAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Request().Header.Get("X-Test-User"); id != "" {
			c.Set("user_id", id)
		}
		return next(c)
	}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, e *echo.Echo, method, path, userID string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get(echo.HeaderContentType) != "application/pdf" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// =====================
// Products (in-memory)
// =====================

type memProducts struct {
	mu   sync.Mutex
	byID map[string]model.Product
}

func newMemProducts(list ...model.Product) *memProducts {
	m := &memProducts{byID: map[string]model.Product{}}
	for _, p := range list {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memProducts) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Product
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memProducts) FindByID(ctx context.Context, id string) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Create(ctx context.Context, p model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) Update(ctx context.Context, p model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return repo.ErrNotFound
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) SetStock(ctx context.Context, id string, stock int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock = stock
	m.byID[id] = p
	return nil
}

func (m *memProducts) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// =====================
// Carts (in-memory)
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

type invoiceStub struct {
	body []byte
	err  error
}

func (s invoiceStub) Render(o model.Order, addr *model.Address, email string) ([]byte, error) {
	return s.body, s.err
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Error(1)
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

type captureMailer struct{ urls []string }

func (m *captureMailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	m.urls = append(m.urls, resetURL)
	return nil
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

