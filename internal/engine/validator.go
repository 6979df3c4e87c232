package engine

import (
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// qualityValidator scores a finished movement list against the three golden
// rules: muscle repetition, family balance, repertoire coverage.
type qualityValidator struct {
	usageRepo           repository.UsageHistoryRepository
	minAvgStalenessDays float64
	log                 *zap.SugaredLogger
}

func newQualityValidator(usageRepo repository.UsageHistoryRepository, minAvgStalenessDays float64, log *zap.SugaredLogger) *qualityValidator {
	return &qualityValidator{
		usageRepo:           usageRepo,
		minAvgStalenessDays: minAvgStalenessDays,
		log:                 log,
	}
}

// evaluate runs all three rules over the non-transition movement list and
// aggregates the score as the fraction of rules that passed.
func (v *qualityValidator) evaluate(ctx context.Context, userID primitive.ObjectID, movements []domain.Movement) domain.QualityReport {
	report := domain.QualityReport{
		MuscleRepetition:   v.checkMuscleRepetition(movements),
		FamilyBalance:      v.checkFamilyBalance(movements),
		RepertoireCoverage: v.checkRepertoireCoverage(ctx, userID, movements),
	}

	passed := 0
	for _, rule := range report.Rules() {
		if rule.Passed {
			passed++
		}
	}
	report.Score = float64(passed) / 3

	return report
}

// checkMuscleRepetition passes only if every consecutive pair's muscle
// overlap stays below the ceiling. Reports the maximum overlap found.
func (v *qualityValidator) checkMuscleRepetition(movements []domain.Movement) domain.RuleResult {
	var maxOverlap float64
	for i := 1; i < len(movements); i++ {
		if o := overlapPercent(movements[i-1], movements[i]); o > maxOverlap {
			maxOverlap = o
		}
	}
	return domain.RuleResult{
		Name:   domain.RuleMuscleRepetition,
		Passed: maxOverlap < overlapMaxPercent,
		Metric: maxOverlap,
	}
}

// checkFamilyBalance passes only if every family's share of the sequence is
// at or below the ceiling. Reports the maximum family percentage found.
func (v *qualityValidator) checkFamilyBalance(movements []domain.Movement) domain.RuleResult {
	if len(movements) == 0 {
		return domain.RuleResult{Name: domain.RuleFamilyBalance, Passed: true}
	}

	counts := make(map[string]int)
	for _, m := range movements {
		counts[m.Family]++
	}

	var maxPercent float64
	for _, c := range counts {
		if p := float64(c) / float64(len(movements)) * 100; p > maxPercent {
			maxPercent = p
		}
	}
	return domain.RuleResult{
		Name:   domain.RuleFamilyBalance,
		Passed: maxPercent <= familyMaxPercent,
		Metric: maxPercent,
	}
}

// checkRepertoireCoverage passes if the average staleness across the
// sequence's movements exceeds the configured minimum, i.e. the class is not
// dominated by material the user just did. Never-used movements count as a
// large staleness. A failed history read is non-fatal and treated as an
// all-fresh repertoire.
func (v *qualityValidator) checkRepertoireCoverage(ctx context.Context, userID primitive.ObjectID, movements []domain.Movement) domain.RuleResult {
	result := domain.RuleResult{Name: domain.RuleRepertoireCoverage, Passed: true}
	if len(movements) == 0 {
		return result
	}

	lastUsed := make(map[primitive.ObjectID]time.Time)
	records, err := v.usageRepo.GetByUser(ctx, userID)
	if err != nil {
		v.log.Warnw("usage history read failed during quality scoring, treating repertoire as unused",
			"userId", userID.Hex(), "error", err)
	} else {
		for _, rec := range records {
			lastUsed[rec.MovementID] = rec.LastUsedAt
		}
	}

	now := time.Now().UTC()
	var total float64
	for _, m := range movements {
		used, ok := lastUsed[m.ID]
		if !ok {
			// Never-used counts as the staleness cap shared with weighting.
			total += maxStalenessDays
			continue
		}
		rec := domain.UsageRecord{LastUsedAt: used}
		total += float64(rec.StalenessDays(now))
	}

	avg := total / float64(len(movements))
	result.Passed = avg > v.minAvgStalenessDays
	result.Metric = avg
	return result
}
