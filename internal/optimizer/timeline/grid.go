// Package timeline discretizes the scheduling day into fixed-width blocks and
// enumerates feasible start blocks for each procedure.
package timeline

import (
	"fmt"

	"github.com/nucmed/petplan/internal/model"
)

// Grid is the day's time axis: Blocks blocks of BlockMinutes each, beginning
// at StartHour:StartMinute.
type Grid struct {
	StartHour    int
	StartMinute  int
	BlockMinutes int
	Blocks       int
}

// DefaultGrid is the working day used by the planner: 06:00-17:00 in
// 10-minute blocks, 66 blocks.
func DefaultGrid() Grid {
	return Grid{StartHour: 6, StartMinute: 0, BlockMinutes: 10, Blocks: 66}
}

// Clock renders a block index as a wall-clock string.
func (g Grid) Clock(block int) string {
	minutes := g.StartHour*60 + g.StartMinute + block*g.BlockMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinutesAt returns the offset of a block from the day start, in minutes.
func (g Grid) MinutesAt(block int) int {
	return block * g.BlockMinutes
}

// BlocksFor converts a duration in minutes to whole blocks, rounding up so a
// partially used block counts as occupied.
func (g Grid) BlocksFor(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes + g.BlockMinutes - 1) / g.BlockMinutes
}

// Interval is a half-open block range [Start, End).
type Interval struct {
	Start int
	End   int
}

// Empty reports whether the interval covers no blocks.
func (iv Interval) Empty() bool { return iv.End <= iv.Start }

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.Empty() || other.Empty() {
		return false
	}
	return iv.Start < other.End && other.Start < iv.End
}

// Footprint is a procedure's block usage given a start block: the uptake and
// imaging phases laid out consecutively from Start.
type Footprint struct {
	Start    int
	Uptake1  int
	Imaging1 int
	Uptake2  int
	Imaging2 int
}

// FootprintFor lays the scheme's phases onto the grid from the given start.
func (g Grid) FootprintFor(scheme *model.DosingScheme, start int) Footprint {
	return Footprint{
		Start:    start,
		Uptake1:  g.BlocksFor(scheme.Uptake1),
		Imaging1: g.BlocksFor(scheme.Imaging1),
		Uptake2:  g.BlocksFor(scheme.Uptake2),
		Imaging2: g.BlocksFor(scheme.Imaging2),
	}
}

// End is the first block after the full uptake+imaging span.
func (f Footprint) End() int {
	return f.Start + f.Uptake1 + f.Imaging1 + f.Uptake2 + f.Imaging2
}

// ImagingIntervals returns the scanner-occupying sub-intervals. Uptake blocks
// are wait time and leave the scanner free.
func (f Footprint) ImagingIntervals() []Interval {
	var ivs []Interval
	im1 := Interval{Start: f.Start + f.Uptake1, End: f.Start + f.Uptake1 + f.Imaging1}
	if !im1.Empty() {
		ivs = append(ivs, im1)
	}
	im2Start := f.Start + f.Uptake1 + f.Imaging1 + f.Uptake2
	im2 := Interval{Start: im2Start, End: im2Start + f.Imaging2}
	if !im2.Empty() {
		ivs = append(ivs, im2)
	}
	return ivs
}

// AdministrationBlocks returns the blocks at which tracer is injected: the
// start of uptake 1, and the start of uptake 2 for two-phase schemes. The
// committed activity is drawn from inventory at these blocks, not at imaging.
func (f Footprint) AdministrationBlocks() []int {
	blocks := []int{f.Start}
	if f.Uptake2 > 0 {
		blocks = append(blocks, f.Start+f.Uptake1+f.Imaging1)
	}
	return blocks
}

// Labels renders the footprint as a per-block phase row of the given width.
func (f Footprint) Labels(width int) []model.PhaseLabel {
	row := make([]model.PhaseLabel, width)
	mark := func(start, n int, label model.PhaseLabel) {
		for b := start; b < start+n && b < width; b++ {
			if b >= 0 {
				row[b] = label
			}
		}
	}
	cursor := f.Start
	mark(cursor, f.Uptake1, model.PhaseUptake1)
	cursor += f.Uptake1
	mark(cursor, f.Imaging1, model.PhaseImaging1)
	cursor += f.Imaging1
	mark(cursor, f.Uptake2, model.PhaseUptake2)
	cursor += f.Uptake2
	mark(cursor, f.Imaging2, model.PhaseImaging2)
	return row
}
