package engine

import (
	"alcyxob/class-planner/internal/domain"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func testValidator(repo *fakeUsageRepo) *qualityValidator {
	return newQualityValidator(repo, 7, zap.NewNop().Sugar())
}

func TestMuscleRepetitionRuleFailsOnHeavyOverlap(t *testing.T) {
	movements := []domain.Movement{
		mv("Hundred Prep", domain.DifficultyBeginner, "supine abdominal", []string{"abs", "obliques"}, 120, domain.PositionSupine),
		mv("Criss Cross", domain.DifficultyBeginner, "rotation", []string{"abs", "obliques"}, 120, domain.PositionSupine),
	}

	report := testValidator(&fakeUsageRepo{}).evaluate(context.Background(), primitive.NewObjectID(), movements)

	assert.False(t, report.MuscleRepetition.Passed)
	assert.Equal(t, 100.0, report.MuscleRepetition.Metric)
}

func TestMuscleRepetitionRulePassesBelowThreshold(t *testing.T) {
	movements := []domain.Movement{
		mv("Hundred Prep", domain.DifficultyBeginner, "supine abdominal", []string{"abs", "obliques"}, 120, domain.PositionSupine),
		mv("Swan Prep", domain.DifficultyBeginner, "prone extension", []string{"back", "glutes"}, 120, domain.PositionProne),
	}

	report := testValidator(&fakeUsageRepo{}).evaluate(context.Background(), primitive.NewObjectID(), movements)

	assert.True(t, report.MuscleRepetition.Passed)
	assert.Equal(t, 0.0, report.MuscleRepetition.Metric)
}

func TestFamilyBalanceRuleFailsForSingleFamilyPool(t *testing.T) {
	movements := []domain.Movement{
		mv("Leg Circle Right", domain.DifficultyBeginner, "supine legwork", []string{"hip flexors"}, 120, domain.PositionSupine),
		mv("Leg Circle Left", domain.DifficultyBeginner, "supine legwork", []string{"quads"}, 120, domain.PositionSupine),
		mv("Frog Press", domain.DifficultyBeginner, "supine legwork", []string{"adductors"}, 120, domain.PositionSupine),
	}

	report := testValidator(&fakeUsageRepo{}).evaluate(context.Background(), primitive.NewObjectID(), movements)

	assert.False(t, report.FamilyBalance.Passed)
	assert.Equal(t, 100.0, report.FamilyBalance.Metric)
}

func TestRepertoireCoverageRuleFailsForFreshMaterial(t *testing.T) {
	userID := primitive.NewObjectID()
	movements := []domain.Movement{
		mv("Hundred Prep", domain.DifficultyBeginner, "supine abdominal", []string{"abs"}, 120, domain.PositionSupine),
		mv("Swan Prep", domain.DifficultyBeginner, "prone extension", []string{"back"}, 120, domain.PositionProne),
	}

	now := time.Now().UTC()
	repo := &fakeUsageRepo{records: []domain.UsageRecord{
		{UserID: userID, MovementID: movements[0].ID, LastUsedAt: now},
		{UserID: userID, MovementID: movements[1].ID, LastUsedAt: now},
	}}

	report := testValidator(repo).evaluate(context.Background(), userID, movements)

	assert.False(t, report.RepertoireCoverage.Passed, "material used today must fail coverage")
	assert.Less(t, report.RepertoireCoverage.Metric, 1.0)
}

func TestRepertoireCoverageTreatsNeverUsedAsStale(t *testing.T) {
	movements := []domain.Movement{
		mv("Hundred Prep", domain.DifficultyBeginner, "supine abdominal", []string{"abs"}, 120, domain.PositionSupine),
	}

	report := testValidator(&fakeUsageRepo{}).evaluate(context.Background(), primitive.NewObjectID(), movements)

	assert.True(t, report.RepertoireCoverage.Passed)
	assert.Equal(t, float64(maxStalenessDays), report.RepertoireCoverage.Metric)
}

func TestRepertoireCoverageSurvivesHistoryReadFailure(t *testing.T) {
	movements := []domain.Movement{
		mv("Hundred Prep", domain.DifficultyBeginner, "supine abdominal", []string{"abs"}, 120, domain.PositionSupine),
	}
	repo := &fakeUsageRepo{readErr: errors.New("connection reset")}

	report := testValidator(repo).evaluate(context.Background(), primitive.NewObjectID(), movements)

	assert.True(t, report.RepertoireCoverage.Passed)
}

func TestScoreIsThePassFraction(t *testing.T) {
	// Single family (rule 2 fails), disjoint muscles (rule 1 passes),
	// never used (rule 3 passes): score 2/3.
	movements := []domain.Movement{
		mv("Leg Circle Right", domain.DifficultyBeginner, "supine legwork", []string{"hip flexors"}, 120, domain.PositionSupine),
		mv("Leg Circle Left", domain.DifficultyBeginner, "supine legwork", []string{"quads"}, 120, domain.PositionSupine),
	}

	report := testValidator(&fakeUsageRepo{}).evaluate(context.Background(), primitive.NewObjectID(), movements)

	require.True(t, report.MuscleRepetition.Passed)
	require.False(t, report.FamilyBalance.Passed)
	require.True(t, report.RepertoireCoverage.Passed)
	assert.InDelta(t, 2.0/3.0, report.Score, 1e-9)
}

func TestReportCarriesExactlyThreeRules(t *testing.T) {
	report := testValidator(&fakeUsageRepo{}).evaluate(context.Background(), primitive.NewObjectID(), nil)

	rules := report.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, domain.RuleMuscleRepetition, rules[0].Name)
	assert.Equal(t, domain.RuleFamilyBalance, rules[1].Name)
	assert.Equal(t, domain.RuleRepertoireCoverage, rules[2].Name)
}
