package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/model"
)

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, current_set, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.CurrentSet,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, current_set, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var u model.User
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, password_hash, current_set, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u model.User
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, current_set = $3, updated_at = $4
		WHERE id = $5
	`
	u.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		u.Email,
		u.PasswordHash,
		u.CurrentSet,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
