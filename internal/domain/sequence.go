// internal/domain/sequence.go
package domain

import "time"

// SequenceItemType distinguishes real movements from synthesized transitions.
type SequenceItemType string

const (
	ItemTypeMovement   SequenceItemType = "movement"
	ItemTypeTransition SequenceItemType = "transition"
)

// SequenceItem is one entry of a planned class: either a movement reference
// carrying its resolved duration, or a synthesized repositioning transition.
// Transition items never follow one another directly.
type SequenceItem struct {
	Type        SequenceItemType `json:"type"`
	Movement    *Movement        `json:"movement,omitempty"`
	DurationSec int              `json:"durationSec"`

	// Transition-only fields.
	FromPosition Position `json:"fromPosition,omitempty"`
	ToPosition   Position `json:"toPosition,omitempty"`
	Narrative    string   `json:"narrative,omitempty"`
}

// Duration returns the resolved duration of the item.
func (i SequenceItem) Duration() time.Duration {
	return time.Duration(i.DurationSec) * time.Second
}

// Rule names reported in a QualityReport. These are the three "golden rules"
// every finished sequence is scored against.
const (
	RuleMuscleRepetition   = "muscle_repetition"
	RuleFamilyBalance      = "family_balance"
	RuleRepertoireCoverage = "repertoire_coverage"
)

// RuleResult is the outcome of a single quality rule: whether it passed and
// the specific metric that decided it (worst overlap, worst family share,
// or average staleness depending on the rule).
type RuleResult struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Metric float64 `json:"metric"`
}

// QualityReport is produced once per finished sequence and never mutated.
// Score is the fraction of the three rules that passed.
type QualityReport struct {
	MuscleRepetition   RuleResult `json:"muscleRepetition"`
	FamilyBalance      RuleResult `json:"familyBalance"`
	RepertoireCoverage RuleResult `json:"repertoireCoverage"`
	Score              float64    `json:"score"`
}

// Rules returns the three rule results in their canonical order.
func (r QualityReport) Rules() []RuleResult {
	return []RuleResult{r.MuscleRepetition, r.FamilyBalance, r.RepertoireCoverage}
}
