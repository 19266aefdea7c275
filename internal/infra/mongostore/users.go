package mongostore

import (
	"context"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repo.UserRepository {
	return &userRepository{coll: db.Collection(colUsers)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now()},
		"$inc": bson.M{"tokenVersion": 1},
	})
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, userID string) error {
	return r.updateOne(ctx, userID, bson.M{"$inc": bson.M{"tokenVersion": 1}})
}

func (r *userRepository) updateOne(ctx context.Context, userID string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
