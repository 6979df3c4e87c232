package engine

import (
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeMovementRepo is an in-memory repository.MovementRepository.
type fakeMovementRepo struct {
	movements []domain.Movement
	err       error
}

func (f *fakeMovementRepo) GetAll(ctx context.Context) ([]domain.Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.movements, nil
}

func (f *fakeMovementRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error) {
	for i := range f.movements {
		if f.movements[i].ID == id {
			return &f.movements[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMovementRepo) Create(ctx context.Context, movement *domain.Movement) (primitive.ObjectID, error) {
	movement.ID = primitive.NewObjectID()
	f.movements = append(f.movements, *movement)
	return movement.ID, nil
}

func (f *fakeMovementRepo) UpsertByName(ctx context.Context, movement *domain.Movement) error {
	for i := range f.movements {
		if f.movements[i].Name == movement.Name {
			f.movements[i] = *movement
			return nil
		}
	}
	f.movements = append(f.movements, *movement)
	return nil
}

type recordedUse struct {
	userID     primitive.ObjectID
	movementID primitive.ObjectID
	usedAt     time.Time
}

// fakeUsageRepo is an in-memory repository.UsageHistoryRepository.
type fakeUsageRepo struct {
	records  []domain.UsageRecord
	readErr  error
	writeErr error
	uses     []recordedUse
}

func (f *fakeUsageRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.UsageRecord, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []domain.UsageRecord
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeUsageRepo) RecordUse(ctx context.Context, userID, movementID primitive.ObjectID, usedAt time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.uses = append(f.uses, recordedUse{userID: userID, movementID: movementID, usedAt: usedAt})
	return nil
}

// mv builds a catalog movement for tests.
func mv(name string, difficulty domain.Difficulty, family string, groups []string, durationSec int, pos domain.Position) domain.Movement {
	return domain.Movement{
		ID:            primitive.NewObjectID(),
		Name:          name,
		Difficulty:    difficulty,
		Family:        family,
		MuscleGroups:  groups,
		DurationSec:   durationSec,
		StartPosition: pos,
	}
}
