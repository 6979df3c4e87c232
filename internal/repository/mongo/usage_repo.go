package mongo

import (
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usageCollectionName = "usage_records"

// mongoUsageRepository implements repository.UsageHistoryRepository
type mongoUsageRepository struct {
	collection *mongo.Collection
}

// NewMongoUsageRepository creates a new usage history repository backed by MongoDB.
func NewMongoUsageRepository(db *mongo.Database) repository.UsageHistoryRepository {
	return &mongoUsageRepository{
		collection: db.Collection(usageCollectionName),
	}
}

// GetByUser retrieves every usage record for the given user.
func (r *mongoUsageRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.UsageRecord, error) {
	var records []domain.UsageRecord
	filter := bson.M{"userId": userID}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// RecordUse upserts the (user, movement) usage record. Concurrent writers for
// the same user are last-write-wins; there is no locking.
func (r *mongoUsageRepository) RecordUse(ctx context.Context, userID, movementID primitive.ObjectID, usedAt time.Time) error {
	if userID == primitive.NilObjectID || movementID == primitive.NilObjectID {
		return errors.New("user ID and movement ID are required")
	}

	filter := bson.M{"userId": userID, "movementId": movementID}
	update := bson.M{
		"$set": bson.M{
			"lastUsedAt": usedAt.UTC(),
			"updatedAt":  time.Now().UTC(),
		},
		"$inc": bson.M{"useCount": 1},
		"$setOnInsert": bson.M{
			"userId":     userID,
			"movementId": movementID,
			"createdAt":  time.Now().UTC(),
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

// EnsureUsageIndexes creates the unique compound index usage lookups rely on.
func EnsureUsageIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "movementId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
