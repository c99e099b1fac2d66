package decay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucmed/petplan/pkg/errors"
)

func TestFraction_ZeroElapsedIsExactlyOne(t *testing.T) {
	f, err := Fraction(68, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)
}

func TestFraction_HalfLife(t *testing.T) {
	f, err := Fraction(68, 68)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-12)
}

func TestFraction_MonotonicNonIncreasing(t *testing.T) {
	prev := math.Inf(1)
	for elapsed := 0.0; elapsed <= 600; elapsed += 7.5 {
		f, err := Fraction(109.8, elapsed)
		require.NoError(t, err)
		assert.LessOrEqual(t, f, prev, "fraction must not increase with elapsed time")
		assert.Greater(t, f, 0.0)
		prev = f
	}
}

func TestFraction_LargeElapsedNeverNegative(t *testing.T) {
	f, err := Fraction(2.03, 1e9)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, f, 0.0)
}

func TestFraction_InvalidInputs(t *testing.T) {
	tests := []struct {
		name     string
		halfLife float64
		elapsed  float64
	}{
		{"zero half-life", 0, 10},
		{"negative half-life", -68, 10},
		{"negative elapsed", 68, -1},
		{"NaN half-life", math.NaN(), 10},
		{"NaN elapsed", 68, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fraction(tt.halfLife, tt.elapsed)
			require.Error(t, err)
			assert.Equal(t, errors.ErrInvalidParameter, errors.CodeOf(err))
		})
	}
}

func TestActivityAt(t *testing.T) {
	a, err := ActivityAt(500, 68, 0)
	require.NoError(t, err)
	assert.Equal(t, 500.0, a)

	a, err = ActivityAt(500, 68, 60)
	require.NoError(t, err)
	assert.InDelta(t, 500*math.Exp2(-60.0/68.0), a, 1e-9)
	assert.InDelta(t, 267.8, a, 0.1)
}

func TestBuildup(t *testing.T) {
	b, err := Buildup(67.7, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b)

	b, err = Buildup(67.7, 67.7)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, b, 1e-12)
}
