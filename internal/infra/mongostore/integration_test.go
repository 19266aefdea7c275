package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"fusion/internal/domain/model"
	"fusion/internal/infra/mongostore"
	repo "fusion/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TEST_MONGO_URI が無ければskip。DBはテストごとに作って捨てる
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("fusion_test_" + uuid.NewString()[:8])
	require.NoError(t, mongostore.EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestCartSave_StaleVersionConflicts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	carts := mongostore.NewCartRepository(db)

	cart := model.Cart{ID: uuid.NewString(), UserID: "u1"}
	cart.AddLine(uuid.NewString(), "p1", "M", 1, model.ProductSnapshot{Name: "Tee", Price: 10})
	require.NoError(t, carts.Save(ctx, &cart))
	assert.Equal(t, int64(1), cart.Version)

	a, err := carts.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	b, err := carts.FindByUserID(ctx, "u1")
	require.NoError(t, err)

	a.Items[0].Quantity = 5
	require.NoError(t, carts.Save(ctx, &a))

	b.Items[0].Quantity = 7
	assert.ErrorIs(t, carts.Save(ctx, &b), repo.ErrConflict)

	dup := model.Cart{ID: uuid.NewString(), UserID: "u1"}
	assert.ErrorIs(t, carts.Save(ctx, &dup), repo.ErrConflict)

	require.NoError(t, carts.ClearByUserID(ctx, "u1"))
	got, err := carts.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, int64(3), got.Version)
}

func TestWishlistAddProduct_Duplicate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	wishlists := mongostore.NewWishlistRepository(db)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, wishlists.AddProduct(ctx, "u1", "p1", now))
	require.NoError(t, wishlists.AddProduct(ctx, "u1", "p2", now.Add(time.Second)))
	assert.ErrorIs(t, wishlists.AddProduct(ctx, "u1", "p1", now), repo.ErrDuplicate)

	w, err := wishlists.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, w.Items, 2)
	assert.Equal(t, "p2", w.Items[0].ProductID)

	require.NoError(t, wishlists.RemoveProduct(ctx, "u1", "p2"))
	assert.ErrorIs(t, wishlists.RemoveProduct(ctx, "u1", "p2"), repo.ErrNotFound)
}

func TestUserEmailUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := mongostore.NewUserRepository(db)

	u := model.User{ID: uuid.NewString(), Username: "asha", Email: "asha@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, users.Create(ctx, &u))

	other := u
	other.ID = uuid.NewString()
	assert.ErrorIs(t, users.Create(ctx, &other), repo.ErrDuplicate)
}

func TestAuditLogList_FilterCountAndOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	audits := mongostore.NewAuditLogRepository(db)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, action := range []model.AuditAction{model.AuditActionUpdateStock, model.AuditActionDeleteOrder, model.AuditActionUpdateStock} {
		require.NoError(t, audits.Create(ctx, model.AuditLog{
			ID:           uuid.NewString(),
			ActorUserID:  "admin-1",
			Action:       action,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   "p1",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, total, err := audits.List(ctx, repo.AuditLogFilter{Page: 1, Limit: 10, Action: model.AuditActionUpdateStock})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	assert.Equal(t, base.Add(2*time.Minute), logs[0].CreatedAt.UTC())

	logs, total, err = audits.List(ctx, repo.AuditLogFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, logs, 1)
}
