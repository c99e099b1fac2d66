package timeline

import (
	"github.com/samber/lo"

	"github.com/nucmed/petplan/internal/model"
)

// FeasibleStarts enumerates the start blocks at which the patient's full
// procedure fits. A start is feasible when the whole uptake+imaging span ends
// within the grid and the block is permitted for the tracer. A fixed start
// collapses the set to that single block, still subject to the same checks.
func FeasibleStarts(g Grid, scheme *model.DosingScheme, tracer *model.Tracer, fixedStart *int) []int {
	span := g.BlocksFor(scheme.Uptake1) + g.BlocksFor(scheme.Imaging1) +
		g.BlocksFor(scheme.Uptake2) + g.BlocksFor(scheme.Imaging2)

	permitted := func(block int) bool {
		if tracer == nil || tracer.AnySlot {
			return true
		}
		return lo.Contains(tracer.PermittedSlots, int64(block))
	}

	fits := func(block int) bool {
		return block >= 0 && block+span <= g.Blocks && permitted(block)
	}

	if fixedStart != nil {
		if fits(*fixedStart) {
			return []int{*fixedStart}
		}
		return nil
	}

	var starts []int
	for b := 0; b+span <= g.Blocks; b++ {
		if permitted(b) {
			starts = append(starts, b)
		}
	}
	return starts
}
