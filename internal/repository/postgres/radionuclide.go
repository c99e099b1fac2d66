package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/model"
)

func (r *radionuclideRepository) Create(ctx context.Context, n *model.Radionuclide) error {
	query := `
		INSERT INTO radionuclides (
			id, name, half_life_minutes, generator_produced, user_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.Name,
		n.HalfLifeMinutes,
		n.GeneratorProduced,
		n.UserID,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create radionuclide: %w", err)
	}
	return nil
}

func (r *radionuclideRepository) Get(ctx context.Context, id uuid.UUID) (*model.Radionuclide, error) {
	query := `
		SELECT id, name, half_life_minutes, generator_produced, user_id,
			   created_at, updated_at
		FROM radionuclides
		WHERE id = $1
	`
	var n model.Radionuclide
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		return nil, fmt.Errorf("failed to get radionuclide: %w", err)
	}
	return &n, nil
}

func (r *radionuclideRepository) List(ctx context.Context, userID string) ([]*model.Radionuclide, error) {
	query := `
		SELECT id, name, half_life_minutes, generator_produced, user_id,
			   created_at, updated_at
		FROM radionuclides
		WHERE user_id = $1
		ORDER BY name
	`
	var list []*model.Radionuclide
	if err := r.db.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list radionuclides: %w", err)
	}
	return list, nil
}

func (r *radionuclideRepository) Update(ctx context.Context, n *model.Radionuclide) error {
	query := `
		UPDATE radionuclides
		SET name = $1, half_life_minutes = $2, generator_produced = $3, updated_at = $4
		WHERE id = $5
	`
	n.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		n.Name,
		n.HalfLifeMinutes,
		n.GeneratorProduced,
		n.UpdatedAt,
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update radionuclide: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("radionuclide not found")
	}
	return nil
}

func (r *radionuclideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM radionuclides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete radionuclide: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("radionuclide not found")
	}
	return nil
}
