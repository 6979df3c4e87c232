package engine

import (
	"alcyxob/class-planner/internal/domain"
	"alcyxob/class-planner/internal/repository"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	// ErrDataUnavailable means no catalog movements exist at or below the
	// requested difficulty tier. Fatal for the request; no partial result.
	ErrDataUnavailable = errors.New("no movements available for requested difficulty")

	ErrInvalidRequest = errors.New("invalid plan request")
)

// Config holds the planner tunables. Zero values fall back to defaults.
type Config struct {
	// MaxIterations caps the selection loop so planning terminates even when
	// the duration budget cannot be reached.
	MaxIterations int
	// DurationTolerance is the accepted fraction of deviation from the
	// requested total duration (0.10 = ±10%).
	DurationTolerance float64
	// TransitionDuration is the fixed nominal length of a repositioning item.
	TransitionDuration time.Duration
	// MinAvgStalenessDays is the repertoire-coverage rule threshold.
	MinAvgStalenessDays float64
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 100
	}
	if c.DurationTolerance <= 0 {
		c.DurationTolerance = 0.10
	}
	if c.TransitionDuration <= 0 {
		c.TransitionDuration = 60 * time.Second
	}
	if c.MinAvgStalenessDays <= 0 {
		c.MinAvgStalenessDays = 7
	}
	return c
}

// PlanRequest is what the caller supplies for one class.
type PlanRequest struct {
	UserID         primitive.ObjectID
	Difficulty     domain.Difficulty
	TargetDuration time.Duration
	IncludeWarmUp  bool
}

func (r PlanRequest) validate() error {
	if r.UserID == primitive.NilObjectID {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRequest)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, r.Difficulty)
	}
	if r.TargetDuration <= 0 {
		return fmt.Errorf("%w: target duration must be positive", ErrInvalidRequest)
	}
	return nil
}

// Plan is the engine's response: the interleaved sequence plus its quality
// report. ID correlates the plan with logs and analytics.
type Plan struct {
	ID            string
	Items         []domain.SequenceItem
	Report        domain.QualityReport
	TotalDuration time.Duration
}

// Engine plans ordered movement sequences for a class.
type Engine interface {
	PlanSequence(ctx context.Context, req PlanRequest) (*Plan, error)
}

// Option customizes engine construction.
type Option func(*engine)

// WithRandFactory overrides the per-request random source, enabling
// deterministic, seedable planning in tests.
func WithRandFactory(factory func() *rand.Rand) Option {
	return func(e *engine) {
		e.newRand = factory
	}
}

// engine implements the Engine interface.
type engine struct {
	movementRepo repository.MovementRepository
	usageRepo    repository.UsageHistoryRepository
	cfg          Config
	newRand      func() *rand.Rand
	log          *zap.SugaredLogger
}

// NewEngine creates a new planning engine.
func NewEngine(movementRepo repository.MovementRepository, usageRepo repository.UsageHistoryRepository, cfg Config, log *zap.SugaredLogger, opts ...Option) Engine {
	e := &engine{
		movementRepo: movementRepo,
		usageRepo:    usageRepo,
		cfg:          cfg.withDefaults(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		log: log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlanSequence orchestrates one planning request: difficulty filtering,
// usage-weighted iterative selection, transition synthesis, quality scoring,
// and finally the usage history commit. History writes are deferred until
// the sequence exists, so a failed or cancelled request never produces
// partial history.
func (e *engine) PlanSequence(ctx context.Context, req PlanRequest) (*Plan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	catalog, err := e.movementRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading movement catalog: %w", err)
	}

	candidates := FilterByDifficulty(catalog, req.Difficulty)
	if len(candidates) == 0 {
		return nil, ErrDataUnavailable
	}

	weighter := newUsageWeighter(e.usageRepo, e.log)
	weights, degraded := weighter.weightsFor(ctx, req.UserID, candidates)
	if degraded {
		e.log.Warnw("planning with degraded uniform weights", "userId", req.UserID.Hex())
	}

	builder := newSequenceBuilder(candidates, weights, req.TargetDuration,
		e.cfg.TransitionDuration, e.cfg.MaxIterations, e.newRand(), e.log)
	movements := builder.build(req.IncludeWarmUp)
	if len(movements) == 0 {
		// Cannot happen with a non-empty candidate pool: the fully relaxed
		// first iteration always accepts something. Guarded anyway.
		return nil, ErrDataUnavailable
	}

	items := SynthesizeTransitions(movements, e.cfg.TransitionDuration)

	validator := newQualityValidator(e.usageRepo, e.cfg.MinAvgStalenessDays, e.log)
	report := validator.evaluate(ctx, req.UserID, movements)

	plan := &Plan{
		ID:            uuid.NewString(),
		Items:         items,
		Report:        report,
		TotalDuration: totalDuration(items),
	}

	e.logDurationDeviation(plan, req)
	e.commitUsage(ctx, req.UserID, movements, plan.ID)

	return plan, nil
}

// commitUsage writes one usage record per movement used. Failures are
// non-fatal to the caller: the plan is already computed and losing one
// class's tracking only slightly degrades future variety decisions.
func (e *engine) commitUsage(ctx context.Context, userID primitive.ObjectID, movements []domain.Movement, planID string) {
	now := time.Now().UTC()
	for _, m := range movements {
		if err := e.usageRepo.RecordUse(ctx, userID, m.ID, now); err != nil {
			e.log.Warnw("usage history write failed",
				"planId", planID, "userId", userID.Hex(), "movementId", m.ID.Hex(), "error", err)
		}
	}
}

func (e *engine) logDurationDeviation(plan *Plan, req PlanRequest) {
	deviation := float64(plan.TotalDuration-req.TargetDuration) / float64(req.TargetDuration)
	if deviation < 0 {
		deviation = -deviation
	}
	if deviation > e.cfg.DurationTolerance {
		e.log.Warnw("planned duration outside tolerance",
			"planId", plan.ID, "target", req.TargetDuration,
			"actual", plan.TotalDuration, "tolerance", e.cfg.DurationTolerance)
	}
}

func totalDuration(items []domain.SequenceItem) time.Duration {
	var total time.Duration
	for _, item := range items {
		total += item.Duration()
	}
	return total
}
