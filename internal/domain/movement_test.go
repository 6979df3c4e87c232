package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("beginner")
	require.NoError(t, err)
	assert.Equal(t, DifficultyBeginner, d)

	_, err = ParseDifficulty("expert")
	assert.Error(t, err)

	_, err = ParseDifficulty("")
	assert.Error(t, err)
}

func TestDifficultyOrdering(t *testing.T) {
	assert.Less(t, DifficultyBeginner.Rank(), DifficultyIntermediate.Rank())
	assert.Less(t, DifficultyIntermediate.Rank(), DifficultyAdvanced.Rank())
	assert.Equal(t, 0, Difficulty("expert").Rank(), "unknown tiers rank below every valid tier")
}

func TestMovementDuration(t *testing.T) {
	m := Movement{DurationSec: 150}
	assert.Equal(t, 150*time.Second, m.Duration())
}

func TestUsageRecordStalenessDays(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	rec := UsageRecord{LastUsedAt: now.Add(-30 * 24 * time.Hour)}
	assert.Equal(t, 30, rec.StalenessDays(now))

	sameDay := UsageRecord{LastUsedAt: now.Add(-2 * time.Hour)}
	assert.Equal(t, 0, sameDay.StalenessDays(now))

	// A clock skew putting the last use in the future never goes negative.
	future := UsageRecord{LastUsedAt: now.Add(12 * time.Hour)}
	assert.Equal(t, 0, future.StalenessDays(now))
}
