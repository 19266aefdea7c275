package mongostore

import (
	"context"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type productRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) repo.ProductRepository {
	return &productRepository{coll: db.Collection(colProducts)}
}

func productFilter(q repo.ProductListQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}

	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if len(q.Sizes) > 0 {
		filter["sizes"] = bson.M{"$in": q.Sizes}
	}
	if len(q.Brands) > 0 {
		filter["brand"] = bson.M{"$in": q.Brands}
	}
	return filter
}

func (r *productRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	filter := productFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return []model.Product{}, 0, err
	}

	opts := pageOptions(q.Page, q.Limit).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return []model.Product{}, 0, err
	}

	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return []model.Product{}, 0, err
	}
	return products, total, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	products := []model.Product{}
	if len(ids) == 0 {
		return products, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Create(ctx context.Context, p model.Product) error {
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *productRepository) Update(ctx context.Context, p model.Product) error {
	return r.set(ctx, p.ID, bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"sizes":       p.Sizes,
		"category":    p.Category,
		"stock":       p.Stock,
		"images":      p.Images,
		"brand":       p.Brand,
		"updatedAt":   p.UpdatedAt,
	})
}

func (r *productRepository) SetStock(ctx context.Context, id string, stock int64) error {
	return r.set(ctx, id, bson.M{"stock": stock, "updatedAt": time.Now()})
}

func (r *productRepository) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
