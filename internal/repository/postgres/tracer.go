package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nucmed/petplan/internal/model"
)

// tracerRow adds the array column sqlx cannot scan into the model directly.
type tracerRow struct {
	model.Tracer
	Slots pq.Int64Array `db:"permitted_slots"`
}

func (r *tracerRepository) Create(ctx context.Context, t *model.Tracer) error {
	query := `
		INSERT INTO tracers (
			id, name, radionuclide_id, price_per_gbq, any_slot, permitted_slots,
			qc_threshold, qc_unit, qc_elapsed_minutes, available, set_name, user_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.RadionuclideID,
		t.PricePerGBq,
		t.AnySlot,
		pq.Int64Array(t.PermittedSlots),
		t.QCThreshold,
		t.QCUnit,
		t.QCElapsedMinutes,
		t.Available,
		t.SetName,
		t.UserID,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	return nil
}

const tracerColumns = `
	id, name, radionuclide_id, price_per_gbq, any_slot, permitted_slots,
	qc_threshold, qc_unit, qc_elapsed_minutes, available, set_name, user_id,
	created_at, updated_at
`

func (r *tracerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Tracer, error) {
	query := `SELECT` + tracerColumns + `FROM tracers WHERE id = $1`

	var row tracerRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to get tracer: %w", err)
	}
	tracer := row.Tracer
	tracer.PermittedSlots = []int64(row.Slots)
	return &tracer, nil
}

// List returns the user's tracers in one attribute set; an empty setName
// lists across all sets.
func (r *tracerRepository) List(ctx context.Context, userID, setName string) ([]*model.Tracer, error) {
	query := `SELECT` + tracerColumns + `FROM tracers WHERE user_id = $1 ORDER BY name`
	args := []interface{}{userID}
	if setName != "" {
		query = `SELECT` + tracerColumns + `FROM tracers WHERE user_id = $1 AND set_name = $2 ORDER BY name`
		args = append(args, setName)
	}

	var rows []tracerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tracers: %w", err)
	}

	tracers := make([]*model.Tracer, 0, len(rows))
	for i := range rows {
		tracer := rows[i].Tracer
		tracer.PermittedSlots = []int64(rows[i].Slots)
		tracers = append(tracers, &tracer)
	}
	return tracers, nil
}

func (r *tracerRepository) Update(ctx context.Context, t *model.Tracer) error {
	query := `
		UPDATE tracers
		SET name = $1, price_per_gbq = $2, any_slot = $3, permitted_slots = $4,
			qc_threshold = $5, qc_unit = $6, qc_elapsed_minutes = $7,
			available = $8, updated_at = $9
		WHERE id = $10
	`
	t.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.PricePerGBq,
		t.AnySlot,
		pq.Int64Array(t.PermittedSlots),
		t.QCThreshold,
		t.QCUnit,
		t.QCElapsedMinutes,
		t.Available,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tracer: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tracer not found")
	}
	return nil
}

func (r *tracerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tracers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tracer: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tracer not found")
	}
	return nil
}
