package mongostore

import (
	"context"
	"time"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) repo.OrderRepository {
	return &orderRepository{coll: db.Collection(colOrders)}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	_, err := r.coll.InsertOne(ctx, order)
	return translate(err)
}

func (r *orderRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": orderID}).Decode(&o); err != nil {
		return model.Order{}, translate(err)
	}
	return o, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

func (r *orderRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.OrderStatus != "" {
		filter["orderStatus"] = f.OrderStatus
	}
	if f.PaymentStatus != "" {
		filter["paymentStatus"] = f.PaymentStatus
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return []model.Order{}, 0, err
	}

	orders, err := r.find(ctx, filter, pageOptions(f.Page, f.Limit).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return []model.Order{}, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Order, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return []model.Order{}, err
	}
	orders := []model.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID string, orderStatus model.OrderStatus, paymentStatus model.PaymentStatus) error {
	return r.set(ctx, orderID, bson.M{"orderStatus": orderStatus, "paymentStatus": paymentStatus})
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID string, transactionID string) error {
	return r.set(ctx, orderID, bson.M{"paymentStatus": model.PaymentStatusPaid, "transactionId": transactionID})
}

func (r *orderRepository) set(ctx context.Context, orderID string, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, orderID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
