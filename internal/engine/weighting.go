package engine

import (
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// maxStalenessDays caps the staleness feeding the weight formula. Beyond
	// ten years a record is as stale as never used for selection purposes.
	maxStalenessDays = 3650

	// neverUsedWeight is assigned to movements with no usage record. It sits
	// strictly above the capped formula's maximum of (maxStalenessDays+1)^2,
	// so never-used movements are always the most preferred no matter how
	// old the oldest real record is.
	neverUsedWeight = (maxStalenessDays + 2) * (maxStalenessDays + 2)

	// degradedWeight is the uniform weight used when the history read fails,
	// degrading selection to plain uniform random.
	degradedWeight = 1
)

// weightForStaleness computes the selection weight of a movement last used
// the given number of days ago: (days + 1)^2, with days capped at
// maxStalenessDays. Quadratic growth biases long-run selection toward
// variety without making recently-used movements impossible to re-select.
func weightForStaleness(days int) float64 {
	if days > maxStalenessDays {
		days = maxStalenessDays
	}
	f := float64(days + 1)
	return f * f
}

// usageWeighter converts per-user usage history into selection weights.
// Read-only over the history store.
type usageWeighter struct {
	usageRepo repository.UsageHistoryRepository
	log       *zap.SugaredLogger
}

func newUsageWeighter(usageRepo repository.UsageHistoryRepository, log *zap.SugaredLogger) *usageWeighter {
	return &usageWeighter{usageRepo: usageRepo, log: log}
}

// weightsFor returns a selection weight per candidate movement ID. A failed
// history read is non-fatal: every candidate gets the same low weight and
// degraded is reported true so the caller can log the fallback.
func (w *usageWeighter) weightsFor(ctx context.Context, userID primitive.ObjectID, candidates []domain.Movement) (weights map[primitive.ObjectID]float64, degraded bool) {
	weights = make(map[primitive.ObjectID]float64, len(candidates))

	records, err := w.usageRepo.GetByUser(ctx, userID)
	if err != nil {
		w.log.Warnw("usage history read failed, degrading to uniform weights",
			"userId", userID.Hex(), "error", err)
		for _, m := range candidates {
			weights[m.ID] = degradedWeight
		}
		return weights, true
	}

	lastUsed := make(map[primitive.ObjectID]time.Time, len(records))
	for _, rec := range records {
		lastUsed[rec.MovementID] = rec.LastUsedAt
	}

	now := time.Now().UTC()
	for _, m := range candidates {
		used, ok := lastUsed[m.ID]
		if !ok {
			weights[m.ID] = neverUsedWeight
			continue
		}
		rec := domain.UsageRecord{LastUsedAt: used}
		weights[m.ID] = weightForStaleness(rec.StalenessDays(now))
	}
	return weights, false
}
