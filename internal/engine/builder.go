package engine

import (
	"alcyxob/class-planner/internal/domain"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// overlapMaxPercent is the consecutive muscle-overlap ceiling: a candidate
	// sharing 50% or more of its muscle groups with the previous movement is
	// excluded while the overlap filter is active.
	overlapMaxPercent = 50.0

	// familyMaxPercent caps each family's share of the estimated final
	// sequence length while the family-balance filter is active.
	familyMaxPercent = 40.0
)

// relaxLevel is the constraint-relaxation ladder. Filters are dropped in a
// fixed order: family balance first, muscle overlap second. Overlap avoidance
// is safety-relevant and is kept alive longer than the softer variety goal.
type relaxLevel int

const (
	relaxNone   relaxLevel = iota // both filters active
	relaxFamily                   // family-balance filter dropped
	relaxAll                      // overlap filter dropped too
)

// warmUpKeywords identifies warm-up-eligible movements by name or family.
var warmUpKeywords = []string{"warm up", "warm-up", "warmup", "breathing", "roll down"}

func isWarmUpEligible(m domain.Movement) bool {
	name := strings.ToLower(m.Name)
	family := strings.ToLower(m.Family)
	for _, kw := range warmUpKeywords {
		if strings.Contains(name, kw) || strings.Contains(family, kw) {
			return true
		}
	}
	return false
}

// overlapPercent computes the muscle-group overlap of a candidate against the
// previous movement: |shared groups| / |candidate's groups| * 100. Membership
// is an unordered set; there is no primary/secondary weighting.
func overlapPercent(prev, candidate domain.Movement) float64 {
	if len(candidate.MuscleGroups) == 0 {
		return 0
	}
	prevGroups := make(map[string]struct{}, len(prev.MuscleGroups))
	for _, g := range prev.MuscleGroups {
		prevGroups[g] = struct{}{}
	}
	shared := 0
	for _, g := range candidate.MuscleGroups {
		if _, ok := prevGroups[g]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(candidate.MuscleGroups)) * 100
}

// sequenceBuilder iteratively assembles an ordered movement list against a
// duration budget, honoring the per-step constraint filters. One builder
// serves one planning request; it is not safe for concurrent use.
type sequenceBuilder struct {
	pool          []domain.Movement
	weights       map[primitive.ObjectID]float64
	target        time.Duration
	transitionDur time.Duration
	maxIterations int
	rng           *rand.Rand
	log           *zap.SugaredLogger

	accepted []domain.Movement
	used     map[primitive.ObjectID]bool
	elapsed  time.Duration
	relaxed  relaxLevel // highest level ever needed, for reporting
}

func newSequenceBuilder(pool []domain.Movement, weights map[primitive.ObjectID]float64, target, transitionDur time.Duration, maxIterations int, rng *rand.Rand, log *zap.SugaredLogger) *sequenceBuilder {
	return &sequenceBuilder{
		pool:          pool,
		weights:       weights,
		target:        target,
		transitionDur: transitionDur,
		maxIterations: maxIterations,
		rng:           rng,
		log:           log,
	}
}

// build runs the selection loop until the duration budget is met, the
// iteration cap is reached, or every relaxation level fails to produce a
// candidate. A partial sequence is acceptable; an empty one only when the
// pool itself is empty.
func (b *sequenceBuilder) build(includeWarmUp bool) []domain.Movement {
	b.accepted = nil
	b.used = make(map[primitive.ObjectID]bool, len(b.pool))
	b.elapsed = 0
	b.relaxed = relaxNone

	if includeWarmUp {
		b.pickWarmUp()
	}

	for iter := 0; b.elapsed < b.target; iter++ {
		if iter >= b.maxIterations {
			b.log.Warnw("iteration cap reached before target duration",
				"cap", b.maxIterations, "elapsed", b.elapsed, "target", b.target)
			break
		}
		if !b.step() {
			b.log.Warnw("constraint deadlock, returning partial sequence",
				"accepted", len(b.accepted), "elapsed", b.elapsed, "target", b.target)
			break
		}
	}

	return b.accepted
}

// pickWarmUp draws the opening movement from the warm-up-eligible sub-pool
// using the same weighted mechanism as the main loop, so the opener varies
// across repeated calls whenever more than one candidate is eligible.
func (b *sequenceBuilder) pickWarmUp() {
	var eligible []domain.Movement
	for _, m := range b.pool {
		if isWarmUpEligible(m) {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		b.log.Debugw("no warm-up-eligible movements in pool, skipping warm-up slot")
		return
	}
	b.accept(b.draw(eligible))
}

// step performs one SELECTING → ACCEPTED iteration, walking the relaxation
// ladder on empty filtered sets. Returns false only when even the fully
// relaxed candidate set is empty.
func (b *sequenceBuilder) step() bool {
	for level := relaxNone; level <= relaxAll; level++ {
		candidates := b.filteredCandidates(level)
		if len(candidates) == 0 {
			continue
		}
		if level > b.relaxed {
			b.relaxed = level
			b.log.Warnw("relaxing selection constraints", "level", level)
		}
		b.accept(b.draw(candidates))
		return true
	}
	return false
}

// filteredCandidates computes the candidate set for one iteration at the
// given relaxation level: movements not yet used this sequence, minus those
// rejected by whichever constraint filters are still active.
func (b *sequenceBuilder) filteredCandidates(level relaxLevel) []domain.Movement {
	remaining := b.remaining()

	var prev *domain.Movement
	if len(b.accepted) > 0 {
		prev = &b.accepted[len(b.accepted)-1]
	}

	candidates := make([]domain.Movement, 0, len(remaining))
	for _, m := range remaining {
		if level < relaxAll && prev != nil && overlapPercent(*prev, m) >= overlapMaxPercent {
			continue
		}
		if level < relaxFamily && b.wouldExceedFamilyShare(m) {
			continue
		}
		candidates = append(candidates, m)
	}
	return candidates
}

// remaining returns pool movements not yet used in this sequence. Once the
// whole pool has been consumed the used set resets, allowing reuse only
// after every movement has appeared once.
func (b *sequenceBuilder) remaining() []domain.Movement {
	out := make([]domain.Movement, 0, len(b.pool))
	for _, m := range b.pool {
		if !b.used[m.ID] {
			out = append(out, m)
		}
	}
	if len(out) == 0 && len(b.pool) > 0 {
		b.log.Debugw("candidate pool exhausted, allowing reuse")
		b.used = make(map[primitive.ObjectID]bool, len(b.pool))
		return append(out, b.pool...)
	}
	return out
}

// wouldExceedFamilyShare reports whether accepting m pushes its family's
// count above familyMaxPercent of the estimated final sequence length. The
// estimate is recomputed every iteration from the remaining duration budget
// and the average movement duration so far.
func (b *sequenceBuilder) wouldExceedFamilyShare(m domain.Movement) bool {
	estimated := b.estimateFinalLength(m)
	if estimated == 0 {
		return false
	}
	count := 1 // the candidate itself
	for _, a := range b.accepted {
		if a.Family == m.Family {
			count++
		}
	}
	return float64(count)/float64(estimated)*100 > familyMaxPercent
}

// estimateFinalLength projects how many movements the finished sequence will
// hold, given what has been accepted so far. Falls back to the candidate's
// own duration when nothing has been accepted yet.
func (b *sequenceBuilder) estimateFinalLength(candidate domain.Movement) int {
	avg := candidate.Duration() + b.transitionDur
	if len(b.accepted) > 0 {
		// elapsed already includes the transitions that actually occurred.
		avg = b.elapsed / time.Duration(len(b.accepted))
	}
	if avg <= 0 {
		return len(b.accepted) + 1
	}

	budget := b.target - b.elapsed
	remaining := int(math.Round(float64(budget) / float64(avg)))
	if remaining < 1 {
		remaining = 1
	}
	return len(b.accepted) + remaining
}

// draw performs weighted random sampling over the candidate set. Movements
// without a weight entry count as the degraded uniform weight, so a partial
// weight map still yields a valid draw.
func (b *sequenceBuilder) draw(candidates []domain.Movement) domain.Movement {
	var total float64
	for _, m := range candidates {
		total += b.weightOf(m)
	}
	if total <= 0 {
		return candidates[b.rng.Intn(len(candidates))]
	}

	r := b.rng.Float64() * total
	for _, m := range candidates {
		r -= b.weightOf(m)
		if r < 0 {
			return m
		}
	}
	// Float rounding can leave r at exactly 0 after the last subtraction.
	return candidates[len(candidates)-1]
}

func (b *sequenceBuilder) weightOf(m domain.Movement) float64 {
	w, ok := b.weights[m.ID]
	if !ok || w <= 0 {
		return degradedWeight
	}
	return w
}

// accept appends the movement and advances the elapsed class time, counting
// a nominal transition only when the setup position changes. Same-position
// neighbors get no transition item, so budgeting one anyway would stop the
// loop early and undershoot the target. This keeps the finished class
// (movements plus repositioning) inside tolerance.
func (b *sequenceBuilder) accept(m domain.Movement) {
	if len(b.accepted) > 0 && b.accepted[len(b.accepted)-1].StartPosition != m.StartPosition {
		b.elapsed += b.transitionDur
	}
	b.accepted = append(b.accepted, m)
	b.used[m.ID] = true
	b.elapsed += m.Duration()
}
