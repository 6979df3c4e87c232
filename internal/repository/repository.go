package repository

import (
	"alcyxob/class-planner/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// MovementRepository defines the read view over the movement catalog, plus
// the write operations the seeding tool needs. The planning path never
// writes the catalog.
type MovementRepository interface {
	GetAll(ctx context.Context) ([]domain.Movement, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error)
	Create(ctx context.Context, movement *domain.Movement) (primitive.ObjectID, error)
	// UpsertByName inserts or replaces a catalog entry keyed by its unique name.
	UpsertByName(ctx context.Context, movement *domain.Movement) error
}

// UsageHistoryRepository defines access to per-user "last used" records.
type UsageHistoryRepository interface {
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.UsageRecord, error)
	// RecordUse upserts the (user, movement) record: creates it on first use,
	// otherwise bumps the use count and the last-used date.
	RecordUse(ctx context.Context, userID, movementID primitive.ObjectID, usedAt time.Time) error
}
