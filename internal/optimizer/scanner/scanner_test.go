package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/optimizer/timeline"
)

func TestTimeline_ReserveAndRelease(t *testing.T) {
	tl := NewTimeline(20)
	ivs := []timeline.Interval{{Start: 4, End: 7}}

	require.True(t, tl.CanReserve(ivs))
	tl.Reserve(ivs)

	assert.False(t, tl.CanReserve([]timeline.Interval{{Start: 6, End: 8}}))
	assert.True(t, tl.CanReserve([]timeline.Interval{{Start: 7, End: 9}}))

	tl.Release(ivs)
	assert.True(t, tl.CanReserve([]timeline.Interval{{Start: 6, End: 8}}))
}

func TestTimeline_OutOfRangeBlocked(t *testing.T) {
	tl := NewTimeline(10)
	assert.False(t, tl.CanReserve([]timeline.Interval{{Start: 8, End: 12}}))
}

func TestTimeline_IdleGap(t *testing.T) {
	tl := NewTimeline(20)
	assert.Equal(t, 0, tl.IdleGap())

	tl.Reserve([]timeline.Interval{{Start: 2, End: 4}})
	assert.Equal(t, 0, tl.IdleGap())

	tl.Reserve([]timeline.Interval{{Start: 8, End: 10}})
	assert.Equal(t, 4, tl.IdleGap())
}

func TestIdleGapOf(t *testing.T) {
	g := timeline.DefaultGrid()
	s := &model.DosingScheme{Uptake1: 60, Imaging1: 20}
	footprints := []timeline.Footprint{
		g.FootprintFor(s, 0),  // imaging [6,8)
		g.FootprintFor(s, 6),  // imaging [12,14)
	}
	assert.Equal(t, 4, IdleGapOf(g.Blocks, footprints))
}

func TestFixedConflicts(t *testing.T) {
	g := timeline.DefaultGrid()
	s := &model.DosingScheme{Uptake1: 60, Imaging1: 20}

	footprints := []timeline.Footprint{
		g.FootprintFor(s, 12),
		g.FootprintFor(s, 12),
		g.FootprintFor(s, 30),
	}
	hasFixed := []bool{true, true, false}

	conflicts := FixedConflicts(footprints, hasFixed)
	require.Len(t, conflicts, 1)
	assert.Equal(t, FixedConflict{First: 0, Second: 1}, conflicts[0])
}

func TestFixedConflicts_UptakeOverlapIsFine(t *testing.T) {
	g := timeline.DefaultGrid()
	s := &model.DosingScheme{Uptake1: 60, Imaging1: 20}

	// starts 2 blocks apart: uptakes overlap, imaging intervals do not
	footprints := []timeline.Footprint{
		g.FootprintFor(s, 10), // imaging [16,18)
		g.FootprintFor(s, 12), // imaging [18,20)
	}
	assert.Empty(t, FixedConflicts(footprints, []bool{true, true}))
}

func TestCandidate_Better(t *testing.T) {
	base := Candidate{CostCZK: 100, IdleGapBlocks: 2, Starts: []int{3, 9}}

	cheaper := Candidate{CostCZK: 99, IdleGapBlocks: 10, Starts: []int{30, 40}}
	assert.True(t, cheaper.Better(base))
	assert.False(t, base.Better(cheaper))

	tighter := Candidate{CostCZK: 100, IdleGapBlocks: 1, Starts: []int{5, 9}}
	assert.True(t, tighter.Better(base))

	immobileEarlier := Candidate{CostCZK: 100, IdleGapBlocks: 2, ImmobileStarts: []int{3}, Starts: []int{3, 9}}
	immobileLater := Candidate{CostCZK: 100, IdleGapBlocks: 2, ImmobileStarts: []int{9}, Starts: []int{9, 3}}
	assert.True(t, immobileEarlier.Better(immobileLater))

	earlierFirst := Candidate{CostCZK: 100, IdleGapBlocks: 2, Starts: []int{2, 12}}
	assert.True(t, earlierFirst.Better(base))

	assert.False(t, base.Better(base), "order must be irreflexive")
}

func TestCandidate_Better_IsTotalOrder(t *testing.T) {
	a := Candidate{CostCZK: 50, IdleGapBlocks: 1, Starts: []int{0, 6}}
	b := Candidate{CostCZK: 50, IdleGapBlocks: 1, Starts: []int{6, 0}}
	assert.True(t, a.Better(b) != b.Better(a), "distinct candidates must be strictly ordered")
}
