package mongostore

import (
	"context"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// _id = userId なので1ユーザー1件
type refreshTokenRepository struct {
	coll *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) repo.RefreshTokenRepository {
	return &refreshTokenRepository{coll: db.Collection(colRefreshTokens)}
}

func (r *refreshTokenRepository) Replace(ctx context.Context, token model.RefreshToken) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": token.UserID}, token, options.Replace().SetUpsert(true))
	return err
}

func (r *refreshTokenRepository) FindByUserID(ctx context.Context, userID string) (model.RefreshToken, error) {
	var rt model.RefreshToken
	if err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&rt); err != nil {
		return model.RefreshToken{}, translate(err)
	}
	return rt, nil
}

func (r *refreshTokenRepository) Rotate(ctx context.Context, oldHash string, next model.RefreshToken) (bool, error) {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": next.UserID, "tokenHash": oldHash}, next)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
