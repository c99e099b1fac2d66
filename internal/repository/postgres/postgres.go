package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/nucmed/petplan/internal/repository"
	"github.com/nucmed/petplan/pkg/security"
)

type radionuclideRepository struct {
	db *sqlx.DB
}

type tracerRepository struct {
	db *sqlx.DB
}

type schemeRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db        *sqlx.DB
	encryptor security.Encryptor
}

type daySetupRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

func NewRadionuclideRepository(db *sqlx.DB) repository.RadionuclideRepository {
	return &radionuclideRepository{db: db}
}

func NewTracerRepository(db *sqlx.DB) repository.TracerRepository {
	return &tracerRepository{db: db}
}

func NewSchemeRepository(db *sqlx.DB) repository.SchemeRepository {
	return &schemeRepository{db: db}
}

// NewPatientRepository stores patient identification encrypted at rest via
// the given encryptor.
func NewPatientRepository(db *sqlx.DB, encryptor security.Encryptor) repository.PatientRepository {
	return &patientRepository{db: db, encryptor: encryptor}
}

func NewDaySetupRepository(db *sqlx.DB) repository.DaySetupRepository {
	return &daySetupRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}
