package mongostore

import (
	"context"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type addressRepository struct {
	coll *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) repo.AddressRepository {
	return &addressRepository{coll: db.Collection(colAddresses)}
}

func (r *addressRepository) Create(ctx context.Context, address model.Address) error {
	_, err := r.coll.InsertOne(ctx, address)
	return translate(err)
}

func (r *addressRepository) ListByUserID(ctx context.Context, userID string) ([]model.Address, error) {
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	list := []model.Address{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *addressRepository) FindByID(ctx context.Context, addressID string) (model.Address, error) {
	var a model.Address
	if err := r.coll.FindOne(ctx, bson.M{"_id": addressID}).Decode(&a); err != nil {
		return model.Address{}, translate(err)
	}
	return a, nil
}

func (r *addressRepository) Update(ctx context.Context, a model.Address) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": a.ID, "userId": a.UserID},
		bson.M{"$set": bson.M{
			"firstName": a.FirstName,
			"lastName":  a.LastName,
			"email":     a.Email,
			"phone":     a.Phone,
			"address":   a.Address,
			"city":      a.City,
			"state":     a.State,
			"country":   a.Country,
			"zipCode":   a.ZipCode,
			"updatedAt": a.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, addressID string, userID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": addressID, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
