// internal/domain/usage.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsageRecord tracks when and how often a user has performed a movement.
// One record exists per (user, movement) pair; it is created on first use
// and updated on every subsequent use.
type UsageRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	MovementID primitive.ObjectID `bson:"movementId" json:"movementId"`
	LastUsedAt time.Time          `bson:"lastUsedAt" json:"lastUsedAt"`
	UseCount   int                `bson:"useCount" json:"useCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StalenessDays returns whole days elapsed between the last use and now.
// Never negative, so a use recorded later the same day counts as 0 days.
func (r UsageRecord) StalenessDays(now time.Time) int {
	days := int(now.Sub(r.LastUsedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
