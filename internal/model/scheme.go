package model

import (
	"github.com/google/uuid"
)

// DoseType selects how a dosing scheme derives the administered dose.
type DoseType string

const (
	DoseTypePerKg DoseType = "per_kg"
	DoseTypeFixed DoseType = "fixed"
)

// DosingScheme is a named protocol for one tracer: a dose rule plus up to two
// uptake/imaging phase pairs, all durations in minutes. A scheme with only
// phase 1 populated models a single-phase procedure.
type DosingScheme struct {
	Base
	Name      string    `db:"name" json:"name"`
	TracerID  uuid.UUID `db:"tracer_id" json:"tracer_id"`
	DoseType  DoseType  `db:"dose_type" json:"dose_type"`
	DoseValue float64   `db:"dose_value" json:"dose_value"`
	Uptake1   int       `db:"uptake1" json:"uptake1"`
	Imaging1  int       `db:"imaging1" json:"imaging1"`
	Uptake2   int       `db:"uptake2" json:"uptake2"`
	Imaging2  int       `db:"imaging2" json:"imaging2"`
	SetName   string    `db:"set_name" json:"set_name"`
	UserID    string    `db:"user_id" json:"-"`
}

// TotalMinutes is the full uptake+imaging span of the procedure.
func (s *DosingScheme) TotalMinutes() int {
	return s.Uptake1 + s.Imaging1 + s.Uptake2 + s.Imaging2
}

// TwoPhase reports whether the scheme has a populated second phase.
func (s *DosingScheme) TwoPhase() bool {
	return s.Uptake2 > 0 || s.Imaging2 > 0
}

type CreateDosingSchemeRequest struct {
	Name      string   `json:"name" binding:"required"`
	TracerID  string   `json:"tracer_id" binding:"required,uuid"`
	DoseType  DoseType `json:"dose_type" binding:"required,dosetype"`
	DoseValue float64  `json:"dose_value" binding:"required,gt=0"`
	Uptake1   int      `json:"uptake1" binding:"gte=0"`
	Imaging1  int      `json:"imaging1" binding:"required,gt=0"`
	Uptake2   int      `json:"uptake2" binding:"gte=0"`
	Imaging2  int      `json:"imaging2" binding:"gte=0"`
	SetName   string   `json:"set_name"`
}

type UpdateDosingSchemeRequest struct {
	Name      *string   `json:"name"`
	TracerID  *string   `json:"tracer_id" binding:"omitempty,uuid"`
	DoseType  *DoseType `json:"dose_type" binding:"omitempty,dosetype"`
	DoseValue *float64  `json:"dose_value" binding:"omitempty,gt=0"`
	Uptake1   *int      `json:"uptake1" binding:"omitempty,gte=0"`
	Imaging1  *int      `json:"imaging1" binding:"omitempty,gt=0"`
	Uptake2   *int      `json:"uptake2" binding:"omitempty,gte=0"`
	Imaging2  *int      `json:"imaging2" binding:"omitempty,gte=0"`
}

// DefaultDosingScheme is one row of the prefill catalog.
type DefaultDosingScheme struct {
	Name      string
	Tracer    string
	DoseValue float64
	DoseType  DoseType
	Uptake1   int
	Imaging1  int
	Uptake2   int
	Imaging2  int
}

// DefaultDosingSchemes seeds a fresh catalog.
var DefaultDosingSchemes = []DefaultDosingScheme{
	{"onko aj", "18F-FDG", 2.5, DoseTypePerKg, 60, 25, 0, 0},
	{"mozek", "18F-FDG", 150, DoseTypeFixed, 0, 60, 0, 0},
	{"amyloid mozek", "18F-Vizamyl (fluemetamol)", 185, DoseTypeFixed, 90, 20, 0, 0},
	{"neuroendokrinni tumory", "68Ga-PSMA-11", 1.85, DoseTypePerKg, 60, 30, 0, 0},
	{"karcinom prostaty", "68Ga-PSMA-11", 2, DoseTypePerKg, 60, 30, 0, 0},
	{"mozkove nadory", "11C-Cholin", 4.5, DoseTypePerKg, 0, 20, 90, 20},
}
