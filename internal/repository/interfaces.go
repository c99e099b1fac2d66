package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/model"
)

type RadionuclideRepository interface {
	Create(ctx context.Context, r *model.Radionuclide) error
	Get(ctx context.Context, id uuid.UUID) (*model.Radionuclide, error)
	List(ctx context.Context, userID string) ([]*model.Radionuclide, error)
	Update(ctx context.Context, r *model.Radionuclide) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TracerRepository interface {
	Create(ctx context.Context, t *model.Tracer) error
	Get(ctx context.Context, id uuid.UUID) (*model.Tracer, error)
	List(ctx context.Context, userID, setName string) ([]*model.Tracer, error)
	Update(ctx context.Context, t *model.Tracer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SchemeRepository interface {
	Create(ctx context.Context, s *model.DosingScheme) error
	Get(ctx context.Context, id uuid.UUID) (*model.DosingScheme, error)
	List(ctx context.Context, userID, setName string) ([]*model.DosingScheme, error)
	Update(ctx context.Context, s *model.DosingScheme) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, userID string) ([]*model.Patient, error)
	Update(ctx context.Context, p *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, userID string) error
}

type DaySetupRepository interface {
	Save(ctx context.Context, d *model.DaySetup) error
	Get(ctx context.Context, userID string) (*model.DaySetup, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
}
