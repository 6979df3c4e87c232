// internal/domain/movement.go
package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty is the ordered difficulty tier of a movement.
// Tiers are cumulative: a request for Intermediate admits Beginner movements too.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// difficultyRanks orders the tiers for cumulative filtering.
var difficultyRanks = map[Difficulty]int{
	DifficultyBeginner:     1,
	DifficultyIntermediate: 2,
	DifficultyAdvanced:     3,
}

// Rank returns the ordinal position of the tier (Beginner < Intermediate < Advanced).
// Unknown tiers rank as 0, below every valid tier.
func (d Difficulty) Rank() int {
	return difficultyRanks[d]
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	_, ok := difficultyRanks[d]
	return ok
}

// ParseDifficulty converts a string (as received from the API or catalog data)
// into a Difficulty, rejecting unknown values.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Position is the starting body position of a movement (setup position).
type Position string

const (
	PositionSupine    Position = "supine"
	PositionProne     Position = "prone"
	PositionSideLying Position = "side-lying"
	PositionSeated    Position = "seated"
	PositionKneeling  Position = "kneeling"
	PositionStanding  Position = "standing"
	PositionQuadruped Position = "quadruped"
)

// MuscleGroup is a referenced identifier with a display name. Movements store
// only the identifiers; there is no primary/secondary distinction in the data.
type MuscleGroup struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Movement represents a single reusable movement definition in the catalog.
type Movement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Difficulty    Difficulty         `bson:"difficulty" json:"difficulty"`
	Family        string             `bson:"family" json:"family"` // coarse movement-pattern tag, e.g. "supine abdominal"
	MuscleGroups  []string           `bson:"muscleGroups" json:"muscleGroups"`
	DurationSec   int                `bson:"durationSec" json:"durationSec"`
	StartPosition Position           `bson:"startPosition" json:"startPosition"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Duration returns the nominal duration of the movement.
func (m Movement) Duration() time.Duration {
	return time.Duration(m.DurationSec) * time.Second
}
