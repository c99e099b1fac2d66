package model

import (
	"github.com/google/uuid"
)

// PhaseLabel marks what a patient occupies a day block with.
type PhaseLabel string

const (
	PhaseEmpty    PhaseLabel = ""
	PhaseUptake1  PhaseLabel = "U1"
	PhaseImaging1 PhaseLabel = "I1"
	PhaseUptake2  PhaseLabel = "U2"
	PhaseImaging2 PhaseLabel = "I2"
)

// PatientPlacement is one patient's resolved slot in the day plan.
type PatientPlacement struct {
	PatientID  uuid.UUID    `json:"patient_id"`
	Surname    string       `json:"surname"`
	StartBlock int          `json:"start_block"`
	StartTime  string       `json:"start_time"`
	DoseMBq    float64      `json:"dose_mbq"`
	Occupancy  []PhaseLabel `json:"occupancy"`
}

// TracerTrace is a tracer's supply-side timeline across the day grid.
type TracerTrace struct {
	TracerID  uuid.UUID `json:"tracer_id"`
	Name      string    `json:"name"`
	Purchases []float64 `json:"purchases"`
	Levels    []float64 `json:"levels"`
}

// ExcludedPatient records a patient dropped before the joint solve because
// its record was inconsistent with the catalog.
type ExcludedPatient struct {
	PatientID uuid.UUID `json:"patient_id"`
	Reason    string    `json:"reason"`
}

// Schedule is the optimizer's output artifact. It is produced fresh by each
// run and never persisted; any input edit invalidates it.
type Schedule struct {
	Blocks           int                `json:"blocks"`
	BlockMinutes     int                `json:"block_minutes"`
	DayStart         string             `json:"day_start"`
	Patients         []PatientPlacement `json:"patients"`
	GeneratorRuns    []bool             `json:"generator_runs"`
	Tracers          []TracerTrace      `json:"tracers"`
	TotalCost        float64            `json:"total_cost"`
	OptimalityProven bool               `json:"optimality_proven"`
	Excluded         []ExcludedPatient  `json:"excluded,omitempty"`
	SolveMillis      int64              `json:"solve_millis"`
}

// ConstraintClass names the first unsatisfiable constraint family of an
// infeasible plan run.
type ConstraintClass string

const (
	ConstraintResourceOverlap ConstraintClass = "resource_overlap"
	ConstraintInventory       ConstraintClass = "inventory"
)

// InfeasibilityReport names the constraint class and entities that made a
// plan run unsatisfiable.
type InfeasibilityReport struct {
	Class    ConstraintClass `json:"class"`
	Patients []uuid.UUID     `json:"patients,omitempty"`
	Tracers  []uuid.UUID     `json:"tracers,omitempty"`
	Message  string          `json:"message"`
}
