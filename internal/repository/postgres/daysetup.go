package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nucmed/petplan/internal/model"
)

type daySetupRow struct {
	model.DaySetup
	Tracers pq.StringArray `db:"selected_tracers"`
}

// Save upserts the single per-user day setup row.
func (r *daySetupRepository) Save(ctx context.Context, d *model.DaySetup) error {
	query := `
		INSERT INTO day_setups (
			id, generator_activity_gbq, generator_calibrated, qa_activity_mbq,
			selected_tracers, user_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			generator_activity_gbq = EXCLUDED.generator_activity_gbq,
			generator_calibrated = EXCLUDED.generator_calibrated,
			qa_activity_mbq = EXCLUDED.qa_activity_mbq,
			selected_tracers = EXCLUDED.selected_tracers,
			updated_at = EXCLUDED.updated_at
	`
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
		d.CreatedAt = time.Now()
	}
	d.UpdatedAt = time.Now()

	selected := make(pq.StringArray, 0, len(d.SelectedTracers))
	for _, id := range d.SelectedTracers {
		selected = append(selected, id.String())
	}

	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.GeneratorActivityGBq,
		d.GeneratorCalibrated,
		d.QAActivityMBq,
		selected,
		d.UserID,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save day setup: %w", err)
	}
	return nil
}

func (r *daySetupRepository) Get(ctx context.Context, userID string) (*model.DaySetup, error) {
	query := `
		SELECT id, generator_activity_gbq, generator_calibrated, qa_activity_mbq,
			   selected_tracers, user_id, created_at, updated_at
		FROM day_setups
		WHERE user_id = $1
	`
	var row daySetupRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get day setup: %w", err)
	}

	setup := row.DaySetup
	setup.SelectedTracers = make([]uuid.UUID, 0, len(row.Tracers))
	for _, raw := range row.Tracers {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt tracer reference in day setup: %w", err)
		}
		setup.SelectedTracers = append(setup.SelectedTracers, id)
	}
	return &setup, nil
}
