package model

import (
	"github.com/google/uuid"
)

// QCUnit says how a tracer's quality-control threshold is expressed.
type QCUnit string

const (
	QCUnitPercentOfDose QCUnit = "percent_of_dose"
	QCUnitAbsoluteMBq   QCUnit = "absolute_mbq"
)

// Tracer is a radiopharmaceutical: a labelled compound of a parent
// radionuclide, purchasable (or eluted) at certain blocks of the day.
//
// PermittedSlots lists the day blocks at which the tracer may be delivered
// and administered; AnySlot is the "anytime" sentinel and makes the explicit
// list irrelevant.
type Tracer struct {
	Base
	Name             string    `db:"name" json:"name"`
	RadionuclideID   uuid.UUID `db:"radionuclide_id" json:"radionuclide_id"`
	PricePerGBq      float64   `db:"price_per_gbq" json:"price_per_gbq"`
	AnySlot          bool      `db:"any_slot" json:"any_slot"`
	PermittedSlots   []int64   `db:"-" json:"permitted_slots"`
	QCThreshold      float64   `db:"qc_threshold" json:"qc_threshold"`
	QCUnit           QCUnit    `db:"qc_unit" json:"qc_unit"`
	QCElapsedMinutes int       `db:"qc_elapsed_minutes" json:"qc_elapsed_minutes"`
	Available        bool      `db:"available" json:"available"`
	SetName          string    `db:"set_name" json:"set_name"`
	UserID           string    `db:"user_id" json:"-"`
}

type CreateTracerRequest struct {
	Name             string  `json:"name" binding:"required"`
	RadionuclideID   string  `json:"radionuclide_id" binding:"required,uuid"`
	PricePerGBq      float64 `json:"price_per_gbq" binding:"gte=0"`
	AnySlot          bool    `json:"any_slot"`
	PermittedSlots   []int64 `json:"permitted_slots" binding:"omitempty,dive,dayblock"`
	QCThreshold      float64 `json:"qc_threshold" binding:"gte=0"`
	QCUnit           QCUnit  `json:"qc_unit" binding:"omitempty,qcunit"`
	QCElapsedMinutes int     `json:"qc_elapsed_minutes" binding:"gte=0"`
	Available        bool    `json:"available"`
	SetName          string  `json:"set_name"`
}

type UpdateTracerRequest struct {
	Name             *string  `json:"name"`
	PricePerGBq      *float64 `json:"price_per_gbq" binding:"omitempty,gte=0"`
	AnySlot          *bool    `json:"any_slot"`
	PermittedSlots   []int64  `json:"permitted_slots" binding:"omitempty,dive,dayblock"`
	QCThreshold      *float64 `json:"qc_threshold" binding:"omitempty,gte=0"`
	QCUnit           *QCUnit  `json:"qc_unit" binding:"omitempty,qcunit"`
	QCElapsedMinutes *int     `json:"qc_elapsed_minutes" binding:"omitempty,gte=0"`
	Available        *bool    `json:"available"`
}

// DefaultTracerNames seeds a fresh catalog; the nuclide prefix resolves
// against the radionuclide catalog.
var DefaultTracerNames = []string{
	"18F-FDG",
	"18F-PSMA",
	"18F-FET",
	"18F-Cholin",
	"18F-NaF",
	"18F-FDOPA",
	"18F-Vizamyl (fluemetamol)",
	"68Ga-DOTATOC",
	"68Ga-PSMA-11",
	"68Ga-FAPI",
	"11C-Cholin",
	"11C-Methionin",
	"15O-H2O",
	"13N-NH3",
}
