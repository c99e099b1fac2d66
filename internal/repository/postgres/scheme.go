package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/model"
)

func (r *schemeRepository) Create(ctx context.Context, s *model.DosingScheme) error {
	query := `
		INSERT INTO dosing_schemes (
			id, name, tracer_id, dose_type, dose_value,
			uptake1, imaging1, uptake2, imaging2, set_name, user_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		s.TracerID,
		s.DoseType,
		s.DoseValue,
		s.Uptake1,
		s.Imaging1,
		s.Uptake2,
		s.Imaging2,
		s.SetName,
		s.UserID,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dosing scheme: %w", err)
	}
	return nil
}

func (r *schemeRepository) Get(ctx context.Context, id uuid.UUID) (*model.DosingScheme, error) {
	query := `
		SELECT id, name, tracer_id, dose_type, dose_value,
			   uptake1, imaging1, uptake2, imaging2, set_name, user_id,
			   created_at, updated_at
		FROM dosing_schemes
		WHERE id = $1
	`
	var s model.DosingScheme
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, fmt.Errorf("failed to get dosing scheme: %w", err)
	}
	return &s, nil
}

func (r *schemeRepository) List(ctx context.Context, userID, setName string) ([]*model.DosingScheme, error) {
	query := `
		SELECT id, name, tracer_id, dose_type, dose_value,
			   uptake1, imaging1, uptake2, imaging2, set_name, user_id,
			   created_at, updated_at
		FROM dosing_schemes
		WHERE user_id = $1 AND set_name = $2
		ORDER BY name
	`
	var list []*model.DosingScheme
	if err := r.db.SelectContext(ctx, &list, query, userID, setName); err != nil {
		return nil, fmt.Errorf("failed to list dosing schemes: %w", err)
	}
	return list, nil
}

func (r *schemeRepository) Update(ctx context.Context, s *model.DosingScheme) error {
	query := `
		UPDATE dosing_schemes
		SET name = $1, tracer_id = $2, dose_type = $3, dose_value = $4,
			uptake1 = $5, imaging1 = $6, uptake2 = $7, imaging2 = $8, updated_at = $9
		WHERE id = $10
	`
	s.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		s.Name,
		s.TracerID,
		s.DoseType,
		s.DoseValue,
		s.Uptake1,
		s.Imaging1,
		s.Uptake2,
		s.Imaging2,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dosing scheme: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("dosing scheme not found")
	}
	return nil
}

func (r *schemeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dosing_schemes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dosing scheme: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("dosing scheme not found")
	}
	return nil
}
