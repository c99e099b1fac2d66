// Package decay implements the exponential decay model shared by the dose
// calculator, the inventory ledger and the plan driver. All times are in
// minutes, all activities in MBq.
package decay

import (
	"fmt"
	"math"

	"github.com/nucmed/petplan/pkg/errors"
)

// Fraction returns the fraction of activity remaining after elapsed minutes
// for a nuclide with the given half-life: 2^(-elapsed/halfLife).
//
// The result is in (0, 1]; Fraction(h, 0) is exactly 1. For very large
// elapsed values the result may underflow to 0, which is clamped as a
// numerical safety net only.
func Fraction(halfLife, elapsed float64) (float64, error) {
	if halfLife <= 0 || math.IsNaN(halfLife) {
		return 0, errors.InvalidParameter(fmt.Sprintf("half-life must be positive, got %v", halfLife))
	}
	if elapsed < 0 || math.IsNaN(elapsed) {
		return 0, errors.InvalidParameter(fmt.Sprintf("elapsed time must be non-negative, got %v", elapsed))
	}
	if elapsed == 0 {
		return 1, nil
	}
	f := math.Exp2(-elapsed / halfLife)
	if f < 0 {
		f = 0
	}
	return f, nil
}

// ActivityAt returns the activity remaining from initial MBq after elapsed
// minutes of decay.
func ActivityAt(initial, halfLife, elapsed float64) (float64, error) {
	f, err := Fraction(halfLife, elapsed)
	if err != nil {
		return 0, err
	}
	return initial * f, nil
}

// Buildup returns the daughter activity accumulated in a generator after
// elapsed minutes of elution, as a fraction of the parent's equilibrium
// activity: 1 - 2^(-elapsed/daughterHalfLife).
func Buildup(daughterHalfLife, elapsed float64) (float64, error) {
	f, err := Fraction(daughterHalfLife, elapsed)
	if err != nil {
		return 0, err
	}
	return 1 - f, nil
}
