// Package dosing derives administered doses from dosing schemes. It is the
// single source of truth for dose computation; any interactive preview in a
// client merely mirrors it.
package dosing

import (
	"math"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/pkg/errors"
)

// Dose is an administered activity in MBq. Exact carries full precision for
// inventory accounting; Display rounds to two decimals for stable rendering.
type Dose struct {
	Exact float64 `json:"exact"`
}

// Display returns the dose rounded to two decimal places.
func (d Dose) Display() float64 {
	return math.Round(d.Exact*100) / 100
}

// Compute resolves the administered dose for one patient weight under the
// given scheme. Fixed schemes ignore the weight entirely.
func Compute(scheme *model.DosingScheme, weightKg float64) (Dose, error) {
	if scheme == nil {
		return Dose{}, errors.MissingScheme("unknown")
	}
	switch scheme.DoseType {
	case model.DoseTypeFixed:
		return Dose{Exact: scheme.DoseValue}, nil
	case model.DoseTypePerKg:
		if weightKg <= 0 {
			return Dose{}, errors.InvalidWeight(scheme.Name, weightKg)
		}
		return Dose{Exact: scheme.DoseValue * weightKg}, nil
	default:
		return Dose{}, errors.InvalidParameter("unknown dose type " + string(scheme.DoseType))
	}
}

// ComputeForPatient resolves the patient's scheme against the snapshot and
// computes the dose. The error carries the patient identifier for reporting.
func ComputeForPatient(snapshot *model.CatalogSnapshot, p *model.Patient) (Dose, error) {
	scheme := snapshot.SchemeByID(p.SchemeID)
	if scheme == nil {
		return Dose{}, errors.MissingScheme(p.ID.String())
	}
	if scheme.DoseType == model.DoseTypePerKg && p.WeightKg <= 0 {
		return Dose{}, errors.InvalidWeight(p.ID.String(), p.WeightKg)
	}
	return Compute(scheme, p.WeightKg)
}
