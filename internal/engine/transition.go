package engine

import (
	"alcyxob/class-planner/internal/domain"
	"fmt"
	"time"
)

// SynthesizeTransitions interleaves the finished movement list with
// repositioning transitions. A transition is inserted between every adjacent
// pair whose starting positions differ; same-position neighbors are a direct
// continuation and get none. So the transition count is movement count minus
// one when every adjacent setup differs, and lower otherwise.
func SynthesizeTransitions(movements []domain.Movement, transitionDur time.Duration) []domain.SequenceItem {
	items := make([]domain.SequenceItem, 0, 2*len(movements))
	for i := range movements {
		m := movements[i]
		if i > 0 {
			prev := movements[i-1]
			if prev.StartPosition != m.StartPosition {
				items = append(items, domain.SequenceItem{
					Type:         domain.ItemTypeTransition,
					DurationSec:  int(transitionDur.Seconds()),
					FromPosition: prev.StartPosition,
					ToPosition:   m.StartPosition,
					Narrative:    transitionNarrative(prev.StartPosition, m.StartPosition),
				})
			}
		}
		items = append(items, domain.SequenceItem{
			Type:        domain.ItemTypeMovement,
			Movement:    &movements[i],
			DurationSec: m.DurationSec,
		})
	}
	return items
}

// transitionNarrative derives placeholder guidance text from the position
// pair. Real narration generation lives outside this engine.
func transitionNarrative(from, to domain.Position) string {
	return fmt.Sprintf("Reposition from %s to %s at your own pace.", from, to)
}
