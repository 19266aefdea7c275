package mongostore

import (
	"context"
	"sort"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type wishlistRepository struct {
	coll *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) repo.WishlistRepository {
	return &wishlistRepository{coll: db.Collection(colWishlists)}
}

func (r *wishlistRepository) FindByUserID(ctx context.Context, userID string) (model.Wishlist, error) {
	var w model.Wishlist
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&w); err != nil {
		return model.Wishlist{}, translate(err)
	}
	//新しい順
	sort.SliceStable(w.Items, func(i, j int) bool {
		return w.Items[i].AddedAt.After(w.Items[j].AddedAt)
	})
	return w, nil
}

// 商品が入っていないときだけpush。入っていればupsertがuserIdのuniqueで失敗する
func (r *wishlistRepository) AddProduct(ctx context.Context, userID string, productID string, addedAt time.Time) error {
	filter := bson.M{
		"userId":             userID,
		"products.productId": bson.M{"$ne": productID},
	}
	update := bson.M{
		"$push":        bson.M{"products": model.WishlistItem{ProductID: productID, AddedAt: addedAt}},
		"$set":         bson.M{"updatedAt": addedAt},
		"$setOnInsert": bson.M{"_id": uuid.NewString(), "createdAt": addedAt},
	}

	for attempt := 0; attempt < 2; attempt++ {
		_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}

		//同時作成で負けただけなら再試行
		w, findErr := r.FindByUserID(ctx, userID)
		if findErr != nil {
			return findErr
		}
		if w.Contains(productID) {
			return repo.ErrDuplicate
		}
	}
	return repo.ErrConflict
}

func (r *wishlistRepository) RemoveProduct(ctx context.Context, userID string, productID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "products.productId": productID},
		bson.M{
			"$pull": bson.M{"products": bson.M{"productId": productID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *wishlistRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"products": bson.A{}, "updatedAt": time.Now()}},
	)
	return err
}
