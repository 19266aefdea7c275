package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"fusion/internal/domain/model"
	"fusion/internal/infra/repository"
	repo "fusion/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TEST_DATABASE_URL が無ければskip
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.RefreshToken{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	))
	return db
}

func TestCartSave_StaleVersionConflicts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	carts := repository.NewCartGormRepository(db)

	cart := model.Cart{ID: uuid.NewString(), UserID: uuid.NewString()}
	cart.AddLine(uuid.NewString(), uuid.NewString(), "M", 1, model.ProductSnapshot{Name: "Tee", Price: 10})
	require.NoError(t, carts.Save(ctx, &cart))
	assert.Equal(t, int64(1), cart.Version)

	a, err := carts.FindByUserID(ctx, cart.UserID)
	require.NoError(t, err)
	b, err := carts.FindByUserID(ctx, cart.UserID)
	require.NoError(t, err)

	a.Items[0].Quantity = 5
	require.NoError(t, carts.Save(ctx, &a))

	b.Items[0].Quantity = 7
	assert.ErrorIs(t, carts.Save(ctx, &b), repo.ErrConflict)

	got, err := carts.FindByUserID(ctx, cart.UserID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(5), got.Items[0].Quantity)

	// 同じユーザーで2つ目の新規カート
	dup := model.Cart{ID: uuid.NewString(), UserID: cart.UserID}
	assert.ErrorIs(t, carts.Save(ctx, &dup), repo.ErrConflict)
}

func TestTxManager_RollbackKeepsCart(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	carts := repository.NewCartGormRepository(db)

	cart := model.Cart{ID: uuid.NewString(), UserID: uuid.NewString()}
	cart.AddLine(uuid.NewString(), uuid.NewString(), "L", 2, model.ProductSnapshot{Name: "Cap", Price: 5})
	require.NoError(t, carts.Save(ctx, &cart))

	tm := repository.NewTxManagerGorm(db)
	err := tm.WithinTx(ctx, func(ctx context.Context, r repo.TxRepos) error {
		if err := r.Carts().ClearByUserID(ctx, cart.UserID); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := carts.FindByUserID(ctx, cart.UserID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestRefreshTokenRotate_OnlyMatchingHash(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tokens := repository.NewRefreshTokenGormRepository(db)

	userID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, tokens.Replace(ctx, model.RefreshToken{UserID: userID, TokenHash: "h1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}))

	next := model.RefreshToken{UserID: userID, TokenHash: "h2", ExpiresAt: now.Add(2 * time.Hour), CreatedAt: now}
	ok, err := tokens.Rotate(ctx, "h1", next)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tokens.Rotate(ctx, "h1", model.RefreshToken{UserID: userID, TokenHash: "h3", ExpiresAt: now, CreatedAt: now})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := tokens.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.TokenHash)

	require.NoError(t, tokens.DeleteByUserID(ctx, userID))
	_, err = tokens.FindByUserID(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestAuditLogList_FilterCountAndOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	audits := repository.NewAuditLogGormRepository(db)

	resourceID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, audits.Create(ctx, model.AuditLog{
			ID:           uuid.NewString(),
			ActorUserID:  "admin-1",
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   resourceID,
			AfterJSON:    `{"stock":1}`,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, total, err := audits.List(ctx, repo.AuditLogFilter{Page: 1, Limit: 2, ResourceID: resourceID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))

	from := base.Add(90 * time.Second)
	logs, total, err = audits.List(ctx, repo.AuditLogFilter{Page: 1, Limit: 10, ResourceID: resourceID, CreatedFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, logs, 1)
}

func TestCartSave_PriceKeepsScale(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	carts := repository.NewCartGormRepository(db)

	cart := model.Cart{ID: uuid.NewString(), UserID: uuid.NewString()}
	cart.AddLine(uuid.NewString(), uuid.NewString(), "S", 1, model.ProductSnapshot{Name: "Pin", Price: 19.999})
	require.NoError(t, carts.Save(ctx, &cart))

	got, err := carts.FindByUserID(ctx, cart.UserID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 19.999, got.Items[0].Price)
}
