package engine

import "alcyxob/class-planner/internal/domain"

// FilterByDifficulty returns the movements whose tier is at or below the
// requested one. Inclusion is cumulative: a Beginner request admits only
// Beginner movements, an Advanced request admits the whole catalog.
// Pure function, no side effects.
func FilterByDifficulty(catalog []domain.Movement, requested domain.Difficulty) []domain.Movement {
	maxRank := requested.Rank()
	filtered := make([]domain.Movement, 0, len(catalog))
	for _, m := range catalog {
		if m.Difficulty.Rank() <= maxRank && m.Difficulty.Valid() {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
