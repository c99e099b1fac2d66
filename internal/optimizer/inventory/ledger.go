// Package inventory keeps a per-tracer, lot-level ledger of radioactive
// supply and consumption on the day grid. Every lot carries its production
// block so draws can be valued against the decayed remainder rather than a
// scalar balance.
package inventory

import (
	"fmt"
	"sort"

	"github.com/nucmed/petplan/internal/optimizer/decay"
	apperrors "github.com/nucmed/petplan/pkg/errors"
)

// LotSource distinguishes how activity entered the ledger.
type LotSource string

const (
	SourceGenerator LotSource = "generator"
	SourcePurchase  LotSource = "purchase"
)

// Lot is a discrete quantity of activity introduced at a known block. The
// remainder is bookkept at production-time strength; its usable value at a
// later block is the remainder scaled by the decay fraction since Block.
type Lot struct {
	Block        int
	Source       LotSource
	InitialMBq   float64
	RemainingMBq float64
	CostCZK      float64
}

// Event records a ledger mutation for chronological replay.
type Event struct {
	Block    int
	DeltaMBq float64 // positive for supply, negative for consumption
	Source   LotSource
	Purchase bool
}

// Ledger tracks one tracer's supply across the day. Blocks are indices on
// the shared grid; blockMinutes converts block deltas to elapsed minutes for
// the decay model.
type Ledger struct {
	halfLifeMinutes float64
	blockMinutes    int
	lots            []Lot
	events          []Event
	totalCostCZK    float64
}

// NewLedger returns an empty ledger for a tracer with the given radionuclide
// half-life.
func NewLedger(halfLifeMinutes float64, blockMinutes int) (*Ledger, error) {
	if halfLifeMinutes <= 0 {
		return nil, apperrors.InvalidParameter(fmt.Sprintf("half-life must be positive, got %v", halfLifeMinutes))
	}
	if blockMinutes <= 0 {
		return nil, apperrors.InvalidParameter(fmt.Sprintf("block width must be positive, got %v", blockMinutes))
	}
	return &Ledger{halfLifeMinutes: halfLifeMinutes, blockMinutes: blockMinutes}, nil
}

// AddGeneratorRun injects fresh activity produced in-house at the given
// block. Generator yield carries the run's fixed cost, not a per-MBq price.
func (l *Ledger) AddGeneratorRun(block int, yieldMBq, runCostCZK float64) error {
	if yieldMBq <= 0 {
		return apperrors.InvalidParameter(fmt.Sprintf("generator yield must be positive, got %v", yieldMBq))
	}
	l.addLot(Lot{Block: block, Source: SourceGenerator, InitialMBq: yieldMBq, RemainingMBq: yieldMBq, CostCZK: runCostCZK})
	return nil
}

// AddPurchase injects an externally sourced lot at the given block, priced at
// the tracer's per-GBq rate against the lot's activity at arrival. Returns
// the lot cost.
func (l *Ledger) AddPurchase(block int, amountMBq, pricePerGBqCZK float64) (float64, error) {
	if amountMBq <= 0 {
		return 0, apperrors.InvalidParameter(fmt.Sprintf("purchase amount must be positive, got %v", amountMBq))
	}
	cost := amountMBq / 1000 * pricePerGBqCZK
	l.addLot(Lot{Block: block, Source: SourcePurchase, InitialMBq: amountMBq, RemainingMBq: amountMBq, CostCZK: cost})
	return cost, nil
}

func (l *Ledger) addLot(lot Lot) {
	l.lots = append(l.lots, lot)
	sort.SliceStable(l.lots, func(i, j int) bool { return l.lots[i].Block < l.lots[j].Block })
	l.events = append(l.events, Event{Block: lot.Block, DeltaMBq: lot.InitialMBq, Source: lot.Source, Purchase: lot.Source == SourcePurchase})
	l.totalCostCZK += lot.CostCZK
}

// fraction is the usable share of a lot from block p when drawn at block c.
func (l *Ledger) fraction(p, c int) float64 {
	f, err := decay.Fraction(l.halfLifeMinutes, float64((c-p)*l.blockMinutes))
	if err != nil {
		// c < p cannot occur for lots filtered to Block <= c
		return 0
	}
	return f
}

// AvailableAt sums the decayed remainders of all lots produced at or before
// the given block.
func (l *Ledger) AvailableAt(block int) float64 {
	var total float64
	for _, lot := range l.lots {
		if lot.Block > block {
			continue
		}
		total += lot.RemainingMBq * l.fraction(lot.Block, block)
	}
	return total
}

// Consume withdraws doseMBq of usable activity at the given block, drawing
// oldest lots first. The draw is valued at the block of consumption, so a lot
// from an earlier block is debited by more than the dose to account for the
// decayed share. Fails with InsufficientInventory when the pooled decayed
// remainder cannot cover the dose.
func (l *Ledger) Consume(block int, doseMBq float64) error {
	if doseMBq <= 0 {
		return apperrors.InvalidParameter(fmt.Sprintf("consumption must be positive, got %v", doseMBq))
	}
	if avail := l.AvailableAt(block); avail < doseMBq-1e-9 {
		return apperrors.InsufficientInventory(fmt.Sprintf(
			"need %.2f MBq at block %d, only %.2f MBq available", doseMBq, block, avail))
	}

	remaining := doseMBq
	for i := range l.lots {
		lot := &l.lots[i]
		if lot.Block > block || lot.RemainingMBq <= 0 {
			continue
		}
		frac := l.fraction(lot.Block, block)
		if frac <= 0 {
			continue
		}
		usable := lot.RemainingMBq * frac
		draw := remaining
		if draw > usable {
			draw = usable
		}
		lot.RemainingMBq -= draw / frac
		remaining -= draw
		if remaining <= 1e-9 {
			break
		}
	}
	l.events = append(l.events, Event{Block: block, DeltaMBq: -doseMBq})
	return nil
}

// TotalCostCZK is the summed procurement cost of all lots added so far.
func (l *Ledger) TotalCostCZK() float64 { return l.totalCostCZK }

// Levels renders the available-activity trace across the whole grid, valued
// against the consumptions recorded so far.
func (l *Ledger) Levels(blocks int) []float64 {
	levels := make([]float64, blocks)
	replay, err := l.replayBalances(blocks)
	if err == nil {
		copy(levels, replay)
	}
	return levels
}

// PurchaseBlocks reports the blocks at which purchase lots were added, in
// chronological order.
func (l *Ledger) PurchaseBlocks() []int {
	var out []int
	for _, lot := range l.lots {
		if lot.Source == SourcePurchase {
			out = append(out, lot.Block)
		}
	}
	return out
}

// PurchaseAmounts renders purchased activity per block across the grid.
func (l *Ledger) PurchaseAmounts(blocks int) []float64 {
	out := make([]float64, blocks)
	for _, lot := range l.lots {
		if lot.Source == SourcePurchase && lot.Block >= 0 && lot.Block < blocks {
			out[lot.Block] += lot.InitialMBq
		}
	}
	return out
}

// GeneratorBlocks reports the blocks of generator runs, in chronological order.
func (l *Ledger) GeneratorBlocks() []int {
	var out []int
	for _, lot := range l.lots {
		if lot.Source == SourceGenerator {
			out = append(out, lot.Block)
		}
	}
	return out
}

// Clone returns an independent copy for branch exploration.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		halfLifeMinutes: l.halfLifeMinutes,
		blockMinutes:    l.blockMinutes,
		lots:            append([]Lot(nil), l.lots...),
		events:          append([]Event(nil), l.events...),
		totalCostCZK:    l.totalCostCZK,
	}
	return c
}

// Replay re-applies all recorded supply and consumption events in block
// order and verifies the balance never dips below zero. This is the
// ledger-level statement of the inventory invariant.
func (l *Ledger) Replay(blocks int) error {
	_, err := l.replayBalances(blocks)
	return err
}

func (l *Ledger) replayBalances(blocks int) ([]float64, error) {
	events := append([]Event(nil), l.events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Block < events[j].Block })

	levels := make([]float64, blocks)
	balance := 0.0
	cursor := 0
	for b := 0; b < blocks; b++ {
		if b > 0 {
			balance *= l.fraction(b-1, b)
		}
		for cursor < len(events) && events[cursor].Block == b {
			balance += events[cursor].DeltaMBq
			cursor++
		}
		if balance < -1e-6 {
			return nil, apperrors.InsufficientInventory(fmt.Sprintf(
				"ledger balance %.2f MBq below zero at block %d", balance, b))
		}
		if balance < 0 {
			balance = 0
		}
		levels[b] = balance
	}
	return levels, nil
}
