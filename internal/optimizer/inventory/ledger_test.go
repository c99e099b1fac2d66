package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nucmed/petplan/pkg/errors"
)

func newTestLedger(t *testing.T, halfLife float64) *Ledger {
	t.Helper()
	l, err := NewLedger(halfLife, 10)
	require.NoError(t, err)
	return l
}

func TestNewLedger_Validation(t *testing.T) {
	_, err := NewLedger(0, 10)
	assert.Equal(t, apperrors.ErrInvalidParameter, apperrors.CodeOf(err))

	_, err = NewLedger(68, 0)
	assert.Equal(t, apperrors.ErrInvalidParameter, apperrors.CodeOf(err))
}

func TestConsumeAtProductionBlock(t *testing.T) {
	// one run of 500 MBq at block 0, dose 259.0 consumed immediately:
	// no decay applies, balance is exactly 241
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(0, 500, 0))
	require.NoError(t, l.Consume(0, 259.0))

	assert.InDelta(t, 241.0, l.AvailableAt(0), 1e-9)
	require.NoError(t, l.Replay(66))
}

func TestConsumeFromDecayedPool(t *testing.T) {
	// 500 MBq produced at block 0 has decayed to ~267.8 MBq 60 minutes
	// later; a 259 MBq dose still fits, a second one does not
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(0, 500, 0))

	assert.InDelta(t, 267.8, l.AvailableAt(6), 0.1)

	require.NoError(t, l.Consume(6, 259.0))

	err := l.Consume(6, 259.0)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInsufficientInventory, apperrors.CodeOf(err))
}

func TestConsume_MoreThanAvailable(t *testing.T) {
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(0, 100, 0))

	err := l.Consume(0, 100.01)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInsufficientInventory, apperrors.CodeOf(err))
}

func TestConsume_DrawsOldestLotsFirst(t *testing.T) {
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(0, 100, 0))
	_, err := l.AddPurchase(6, 200, 5000)
	require.NoError(t, err)

	// at block 6 the old lot supplies ~53.6 MBq; a 60 MBq draw empties it
	// and takes the rest from the fresh purchase
	require.NoError(t, l.Consume(6, 60))
	assert.InDelta(t, 0, l.lots[0].RemainingMBq, 1e-6)
	assert.Greater(t, l.lots[1].RemainingMBq, 190.0)
}

func TestPurchaseCost(t *testing.T) {
	l := newTestLedger(t, 109.8)
	cost, err := l.AddPurchase(12, 500, 4000) // 0.5 GBq at 4000/GBq
	require.NoError(t, err)
	assert.InDelta(t, 2000, cost, 1e-9)
	assert.InDelta(t, 2000, l.TotalCostCZK(), 1e-9)

	require.NoError(t, l.AddGeneratorRun(0, 300, 150))
	assert.InDelta(t, 2150, l.TotalCostCZK(), 1e-9)
}

func TestLevels_TraceDecaysBetweenEvents(t *testing.T) {
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(0, 500, 0))
	require.NoError(t, l.Consume(6, 259.0))

	levels := l.Levels(12)
	assert.InDelta(t, 500, levels[0], 1e-9)
	assert.InDelta(t, 267.8, levels[5]*math.Exp2(-10.0/68), 0.2) // decays block to block
	assert.InDelta(t, 267.8-259.0, levels[6], 0.1)
	// strictly non-increasing after the last supply event
	for b := 1; b < 12; b++ {
		assert.LessOrEqual(t, levels[b], levels[b-1]+1e-9)
	}
}

func TestReplay_DetectsNegativeBalance(t *testing.T) {
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(0, 500, 0))
	require.NoError(t, l.Consume(0, 400))

	// force a deficit by consuming after heavy decay without topping up
	l.events = append(l.events, Event{Block: 30, DeltaMBq: -90})
	err := l.Replay(66)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInsufficientInventory, apperrors.CodeOf(err))
}

func TestClone_Independent(t *testing.T) {
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(0, 500, 0))

	c := l.Clone()
	require.NoError(t, c.Consume(0, 500))

	assert.InDelta(t, 500, l.AvailableAt(0), 1e-9)
	assert.InDelta(t, 0, c.AvailableAt(0), 1e-9)
}

func TestEventTimelines(t *testing.T) {
	l := newTestLedger(t, 68)
	require.NoError(t, l.AddGeneratorRun(3, 500, 0))
	_, err := l.AddPurchase(10, 120, 5000)
	require.NoError(t, err)
	_, err = l.AddPurchase(20, 80, 5000)
	require.NoError(t, err)

	assert.Equal(t, []int{3}, l.GeneratorBlocks())
	assert.Equal(t, []int{10, 20}, l.PurchaseBlocks())
}
