package model

// Radionuclide is an isotope with a known half-life. Generator-produced
// nuclides (e.g. 68Ga from a 68Ge/68Ga generator) are supplied by on-site
// elution runs instead of purchased lots.
type Radionuclide struct {
	Base
	Name              string  `db:"name" json:"name"`
	HalfLifeMinutes   float64 `db:"half_life_minutes" json:"half_life_minutes"`
	GeneratorProduced bool    `db:"generator_produced" json:"generator_produced"`
	UserID            string  `db:"user_id" json:"-"`
}

type CreateRadionuclideRequest struct {
	Name              string  `json:"name" binding:"required"`
	HalfLifeMinutes   float64 `json:"half_life_minutes" binding:"required,gt=0"`
	GeneratorProduced bool    `json:"generator_produced"`
}

type UpdateRadionuclideRequest struct {
	Name              *string  `json:"name"`
	HalfLifeMinutes   *float64 `json:"half_life_minutes" binding:"omitempty,gt=0"`
	GeneratorProduced *bool    `json:"generator_produced"`
}

// DefaultRadionuclides seeds a fresh catalog, half-lives in minutes.
var DefaultRadionuclides = []Radionuclide{
	{Name: "18F", HalfLifeMinutes: 109.8},
	{Name: "68Ga", HalfLifeMinutes: 67.7, GeneratorProduced: true},
	{Name: "11C", HalfLifeMinutes: 20.4},
	{Name: "15O", HalfLifeMinutes: 2.03},
	{Name: "13N", HalfLifeMinutes: 9.96},
}
