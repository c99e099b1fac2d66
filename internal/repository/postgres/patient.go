package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/model"
)

// Patient identification is a national identifier and never touches the
// database in plaintext.

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, surname, given_name, identification, weight_kg, scheme_id,
			administered_dose, fixed_start_block, immobile, user_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	encrypted, err := r.encryptor.EncryptString(p.Identification)
	if err != nil {
		return fmt.Errorf("failed to encrypt patient identification: %w", err)
	}

	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Surname,
		p.GivenName,
		encrypted,
		p.WeightKg,
		p.SchemeID,
		p.AdministeredDose,
		p.FixedStartBlock,
		p.Immobile,
		p.UserID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, surname, given_name, identification, weight_kg, scheme_id,
			   administered_dose, fixed_start_block, immobile, user_id,
			   created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var p model.Patient
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if err := r.decrypt(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepository) List(ctx context.Context, userID string) ([]*model.Patient, error) {
	query := `
		SELECT id, surname, given_name, identification, weight_kg, scheme_id,
			   administered_dose, fixed_start_block, immobile, user_id,
			   created_at, updated_at
		FROM patients
		WHERE user_id = $1
		ORDER BY created_at
	`
	var list []*model.Patient
	if err := r.db.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	for _, p := range list {
		if err := r.decrypt(p); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *patientRepository) Update(ctx context.Context, p *model.Patient) error {
	query := `
		UPDATE patients
		SET surname = $1, given_name = $2, identification = $3, weight_kg = $4,
			scheme_id = $5, administered_dose = $6, fixed_start_block = $7,
			immobile = $8, updated_at = $9
		WHERE id = $10
	`
	encrypted, err := r.encryptor.EncryptString(p.Identification)
	if err != nil {
		return fmt.Errorf("failed to encrypt patient identification: %w", err)
	}
	p.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		p.Surname,
		p.GivenName,
		encrypted,
		p.WeightKg,
		p.SchemeID,
		p.AdministeredDose,
		p.FixedStartBlock,
		p.Immobile,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

func (r *patientRepository) DeleteAll(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear patients: %w", err)
	}
	return nil
}

func (r *patientRepository) decrypt(p *model.Patient) error {
	plain, err := r.encryptor.DecryptString(p.Identification)
	if err != nil {
		return fmt.Errorf("failed to decrypt patient identification: %w", err)
	}
	p.Identification = plain
	return nil
}
