package mongostore

import (
	"context"
	"errors"

	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colUsers         = "users"
	colRefreshTokens = "refresh_tokens"
	colProducts      = "products"
	colCarts         = "carts"
	colOrders        = "orders"
	colAddresses     = "addresses"
	colWishlists     = "wishlists"
	colAuditLogs     = "audit_logs"
)

// コレクションごとのindex
// carts/wishlistsのuserId uniqueは同時作成の競合検出にも使う
var indexes = map[string][]mongo.IndexModel{
	colUsers: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	colCarts: {
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	colWishlists: {
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	colOrders: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "orderStatus", Value: 1}}},
	},
	colAddresses: {
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	},
	colProducts: {
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "brand", Value: 1}}},
	},
	colAuditLogs: {
		{Keys: bson.D{{Key: "resourceType", Value: 1}, {Key: "resourceId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	},
}

// 起動時に1回
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// ErrNoDocumentsをrepo.ErrNotFoundへ
func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repo.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repo.ErrDuplicate
	}
	return err
}

func pageOptions(page, limit int) *options.FindOptions {
	return options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}
