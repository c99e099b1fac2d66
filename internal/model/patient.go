package model

import (
	"github.com/google/uuid"
)

// Patient is one examination booked for the planned day. Identity fields are
// stored encrypted; the repository decrypts on read.
//
// FixedStartBlock pins the uptake start to one day block and overrides the
// scheduler's choice. Immobile marks patients whose repositioning is costly;
// the scheduler prefers earlier starts for them when otherwise tied.
type Patient struct {
	Base
	Surname          string    `db:"surname" json:"surname"`
	GivenName        string    `db:"given_name" json:"given_name"`
	Identification   string    `db:"identification" json:"identification"`
	WeightKg         float64   `db:"weight_kg" json:"weight_kg"`
	SchemeID         uuid.UUID `db:"scheme_id" json:"scheme_id"`
	AdministeredDose float64   `db:"administered_dose" json:"administered_dose"`
	FixedStartBlock  *int      `db:"fixed_start_block" json:"fixed_start_block,omitempty"`
	Immobile         bool      `db:"immobile" json:"immobile"`
	UserID           string    `db:"user_id" json:"-"`
}

type CreatePatientRequest struct {
	Surname         string  `json:"surname" binding:"required"`
	GivenName       string  `json:"given_name" binding:"required"`
	Identification  string  `json:"identification" binding:"required"`
	WeightKg        float64 `json:"weight_kg" binding:"required,gt=0"`
	SchemeID        string  `json:"scheme_id" binding:"required,uuid"`
	FixedStartBlock *int    `json:"fixed_start_block" binding:"omitempty,dayblock"`
	Immobile        bool    `json:"immobile"`
}

type UpdatePatientRequest struct {
	Surname         *string  `json:"surname"`
	GivenName       *string  `json:"given_name"`
	Identification  *string  `json:"identification"`
	WeightKg        *float64 `json:"weight_kg" binding:"omitempty,gt=0"`
	SchemeID        *string  `json:"scheme_id" binding:"omitempty,uuid"`
	FixedStartBlock *int     `json:"fixed_start_block" binding:"omitempty,dayblock"`
	Immobile        *bool    `json:"immobile"`
}
