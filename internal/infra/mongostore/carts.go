package mongostore

import (
	"context"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// 明細はカートのドキュメントに埋め込み
type cartRepository struct {
	coll *mongo.Collection
}

func NewCartRepository(db *mongo.Database) repo.CartRepository {
	return &cartRepository{coll: db.Collection(colCarts)}
}

func (r *cartRepository) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var cart model.Cart
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		return model.Cart{}, translate(err)
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return cart, nil
}

// {_id, version} が一致したときだけ置き換える
func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	now := time.Now()

	doc := *cart
	doc.Version = cart.Version + 1
	doc.UpdatedAt = now
	if doc.Items == nil {
		doc.Items = []model.CartItem{}
	}

	if cart.Version == 0 {
		doc.CreatedAt = now
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return repo.ErrConflict
			}
			return err
		}
	} else {
		res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": cart.ID, "version": cart.Version}, doc)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return repo.ErrConflict
		}
	}

	*cart = doc
	return nil
}

func (r *cartRepository) ClearByUserID(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set": bson.M{"items": bson.A{}, "updatedAt": time.Now()},
			"$inc": bson.M{"version": 1},
		},
	)
	return err
}
