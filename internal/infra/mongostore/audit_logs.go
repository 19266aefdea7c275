package mongostore

import (
	"context"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type auditLogRepository struct {
	coll *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) repo.AuditLogRepository {
	return &auditLogRepository{coll: db.Collection(colAuditLogs)}
}

func (r *auditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	_, err := r.coll.InsertOne(ctx, log)
	return err
}

func (r *auditLogRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	filter := bson.M{}
	if f.ActorUserID != "" {
		filter["actorUserId"] = f.ActorUserID
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.ResourceType != "" {
		filter["resourceType"] = f.ResourceType
	}
	if f.ResourceID != "" {
		filter["resourceId"] = f.ResourceID
	}
	created := bson.M{}
	if f.CreatedFrom != nil {
		created["$gte"] = *f.CreatedFrom
	}
	if f.CreatedTo != nil {
		created["$lte"] = *f.CreatedTo
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return []model.AuditLog{}, 0, err
	}

	cur, err := r.coll.Find(ctx, filter, pageOptions(f.Page, f.Limit).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return []model.AuditLog{}, 0, err
	}
	logs := []model.AuditLog{}
	if err := cur.All(ctx, &logs); err != nil {
		return []model.AuditLog{}, 0, err
	}
	return logs, total, nil
}
