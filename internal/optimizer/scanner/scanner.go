// Package scanner models the single imaging device as an exclusive block
// resource: imaging intervals of different patients must never overlap, and
// candidate plans are ranked by the tie-break total order.
package scanner

import (
	"github.com/samber/lo"

	"github.com/nucmed/petplan/internal/optimizer/timeline"
)

// Timeline is the per-block occupancy state of the scanner during a search.
// Only imaging intervals occupy it; uptake time leaves it free.
type Timeline struct {
	occupied []bool
}

// NewTimeline returns an empty occupancy row of the given width.
func NewTimeline(blocks int) *Timeline {
	return &Timeline{occupied: make([]bool, blocks)}
}

// CanReserve reports whether all given intervals are currently free.
func (t *Timeline) CanReserve(ivs []timeline.Interval) bool {
	for _, iv := range ivs {
		for b := iv.Start; b < iv.End; b++ {
			if b < 0 || b >= len(t.occupied) || t.occupied[b] {
				return false
			}
		}
	}
	return true
}

// Reserve marks the intervals occupied. Callers check CanReserve first.
func (t *Timeline) Reserve(ivs []timeline.Interval) {
	t.set(ivs, true)
}

// Release frees the intervals again when a search branch backtracks.
func (t *Timeline) Release(ivs []timeline.Interval) {
	t.set(ivs, false)
}

func (t *Timeline) set(ivs []timeline.Interval, v bool) {
	for _, iv := range ivs {
		for b := iv.Start; b < iv.End; b++ {
			if b >= 0 && b < len(t.occupied) {
				t.occupied[b] = v
			}
		}
	}
}

// IdleGap counts the free blocks strictly between the first and last
// occupied block. An empty or single-interval timeline has no gap.
func (t *Timeline) IdleGap() int {
	first, last := -1, -1
	for b, occ := range t.occupied {
		if occ {
			if first < 0 {
				first = b
			}
			last = b
		}
	}
	if first < 0 {
		return 0
	}
	gap := 0
	for b := first; b <= last; b++ {
		if !t.occupied[b] {
			gap++
		}
	}
	return gap
}

// IdleGapOf computes the idle gap of a set of footprints without mutating
// any timeline, for ranking completed candidates.
func IdleGapOf(blocks int, footprints []timeline.Footprint) int {
	t := NewTimeline(blocks)
	for _, f := range footprints {
		t.Reserve(f.ImagingIntervals())
	}
	return t.IdleGap()
}

// FixedConflict is a pair of patients whose fixed administration times force
// their imaging intervals to overlap, identified by their positions in the
// input snapshot.
type FixedConflict struct {
	First  int
	Second int
}

// FixedConflicts scans patients with fixed start blocks for pairwise imaging
// overlap. Footprints without a conflict partner are skipped; hasFixed marks
// which entries carry a fixed start. This gives the infeasibility report a
// minimal conflicting subset when the clash is between pinned patients.
func FixedConflicts(footprints []timeline.Footprint, hasFixed []bool) []FixedConflict {
	var conflicts []FixedConflict
	for i := 0; i < len(footprints); i++ {
		if !hasFixed[i] {
			continue
		}
		for j := i + 1; j < len(footprints); j++ {
			if !hasFixed[j] {
				continue
			}
			if imagingOverlaps(footprints[i], footprints[j]) {
				conflicts = append(conflicts, FixedConflict{First: i, Second: j})
			}
		}
	}
	return conflicts
}

func imagingOverlaps(a, b timeline.Footprint) bool {
	for _, ia := range a.ImagingIntervals() {
		for _, ib := range b.ImagingIntervals() {
			if ia.Overlaps(ib) {
				return true
			}
		}
	}
	return false
}

// Candidate is a complete assignment under comparison. Starts are per
// patient in snapshot order; ImmobileStarts holds the start blocks of
// patients flagged immobile.
type Candidate struct {
	CostCZK        float64
	IdleGapBlocks  int
	ImmobileStarts []int
	Starts         []int
}

// Better implements the tie-break total order over candidate plans:
// lower procurement cost, then smaller scanner idle gap, then earlier
// starts for immobile patients, then earlier starts in patient insertion
// order. The order is total, so search results are deterministic regardless
// of exploration order.
func (c Candidate) Better(o Candidate) bool {
	const eps = 1e-6
	if c.CostCZK < o.CostCZK-eps {
		return true
	}
	if c.CostCZK > o.CostCZK+eps {
		return false
	}
	if c.IdleGapBlocks != o.IdleGapBlocks {
		return c.IdleGapBlocks < o.IdleGapBlocks
	}
	if cs, os := lo.Sum(c.ImmobileStarts), lo.Sum(o.ImmobileStarts); cs != os {
		return cs < os
	}
	for i := range c.Starts {
		if i >= len(o.Starts) {
			break
		}
		if c.Starts[i] != o.Starts[i] {
			return c.Starts[i] < o.Starts[i]
		}
	}
	return false
}
