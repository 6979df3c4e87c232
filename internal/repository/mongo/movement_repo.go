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

const movementCollectionName = "movements"

// mongoMovementRepository implements repository.MovementRepository
type mongoMovementRepository struct {
	collection *mongo.Collection
}

// NewMongoMovementRepository creates a new movement catalog repository backed by MongoDB.
func NewMongoMovementRepository(db *mongo.Database) repository.MovementRepository {
	return &mongoMovementRepository{
		collection: db.Collection(movementCollectionName),
	}
}

// GetAll retrieves the full movement catalog, sorted by name for stable listings.
func (r *mongoMovementRepository) GetAll(ctx context.Context) ([]domain.Movement, error) {
	var movements []domain.Movement

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &movements); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return movements, nil
}

// GetByID retrieves a single movement by its ID.
func (r *mongoMovementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error) {
	var movement domain.Movement
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&movement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// Create inserts a new movement into the catalog.
func (r *mongoMovementRepository) Create(ctx context.Context, movement *domain.Movement) (primitive.ObjectID, error) {
	if movement.Name == "" || !movement.Difficulty.Valid() {
		return primitive.NilObjectID, errors.New("movement name and a valid difficulty are required")
	}

	movement.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	movement.CreatedAt = now
	movement.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, movement)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// UpsertByName inserts or replaces a catalog entry keyed by its name.
// Seeding runs this once per snapshot entry so re-seeding is idempotent.
func (r *mongoMovementRepository) UpsertByName(ctx context.Context, movement *domain.Movement) error {
	if movement.Name == "" || !movement.Difficulty.Valid() {
		return errors.New("movement name and a valid difficulty are required")
	}

	now := time.Now().UTC()
	filter := bson.M{"name": movement.Name}
	update := bson.M{
		"$set": bson.M{
			"description":   movement.Description,
			"difficulty":    movement.Difficulty,
			"family":        movement.Family,
			"muscleGroups":  movement.MuscleGroups,
			"durationSec":   movement.DurationSec,
			"startPosition": movement.StartPosition,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"name":      movement.Name,
			"createdAt": now,
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

// EnsureMovementIndexes creates the indexes the catalog is queried by.
func EnsureMovementIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// The catalog is keyed by difficulty tier and family for filtering.
			Keys:    bson.D{{Key: "difficulty", Value: 1}, {Key: "family", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
