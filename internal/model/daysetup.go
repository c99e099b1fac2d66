package model

import (
	"time"

	"github.com/google/uuid"
)

// DaySetup holds the per-day generator state and tracer selection. One row
// per user; saving overwrites the previous setup.
type DaySetup struct {
	Base
	GeneratorActivityGBq float64     `db:"generator_activity_gbq" json:"generator_activity_gbq"`
	GeneratorCalibrated  time.Time   `db:"generator_calibrated" json:"generator_calibrated"`
	QAActivityMBq        float64     `db:"qa_activity_mbq" json:"qa_activity_mbq"`
	SelectedTracers      []uuid.UUID `db:"-" json:"selected_tracers"`
	UserID               string      `db:"user_id" json:"-"`
}

type SaveDaySetupRequest struct {
	GeneratorActivityGBq float64   `json:"generator_activity_gbq" binding:"gte=0"`
	GeneratorCalibrated  time.Time `json:"generator_calibrated" binding:"required"`
	QAActivityMBq        float64   `json:"qa_activity_mbq" binding:"gte=0"`
	SelectedTracers      []string  `json:"selected_tracers" binding:"omitempty,dive,uuid"`
}
