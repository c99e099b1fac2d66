// Package patient manages the day's examination list. Dose previews shown to
// clients come from the same calculator the solver uses.
package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/optimizer/dosing"
	"github.com/nucmed/petplan/internal/repository"
)

type Service struct {
	patients repository.PatientRepository
	schemes  repository.SchemeRepository
}

func NewService(patients repository.PatientRepository, schemes repository.SchemeRepository) *Service {
	return &Service{patients: patients, schemes: schemes}
}

func (s *Service) CreatePatient(ctx context.Context, userID string, req *model.CreatePatientRequest) (*model.Patient, error) {
	schemeID, err := uuid.Parse(req.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("invalid scheme id: %w", err)
	}
	scheme, err := s.schemes.Get(ctx, schemeID)
	if err != nil {
		return nil, fmt.Errorf("dosing scheme not found: %w", err)
	}

	dose, err := dosing.Compute(scheme, req.WeightKg)
	if err != nil {
		return nil, err
	}

	p := &model.Patient{
		Surname:          req.Surname,
		GivenName:        req.GivenName,
		Identification:   req.Identification,
		WeightKg:         req.WeightKg,
		SchemeID:         schemeID,
		AdministeredDose: dose.Display(),
		FixedStartBlock:  req.FixedStartBlock,
		Immobile:         req.Immobile,
		UserID:           userID,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.patients.Get(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, userID string) ([]*model.Patient, error) {
	return s.patients.List(ctx, userID)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Surname != nil {
		p.Surname = *req.Surname
	}
	if req.GivenName != nil {
		p.GivenName = *req.GivenName
	}
	if req.Identification != nil {
		p.Identification = *req.Identification
	}
	if req.WeightKg != nil {
		p.WeightKg = *req.WeightKg
	}
	if req.SchemeID != nil {
		schemeID, err := uuid.Parse(*req.SchemeID)
		if err != nil {
			return nil, fmt.Errorf("invalid scheme id: %w", err)
		}
		p.SchemeID = schemeID
	}
	if req.FixedStartBlock != nil {
		p.FixedStartBlock = req.FixedStartBlock
	}
	if req.Immobile != nil {
		p.Immobile = *req.Immobile
	}

	// weight or scheme edits change the administered dose
	scheme, err := s.schemes.Get(ctx, p.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("dosing scheme not found: %w", err)
	}
	dose, err := dosing.Compute(scheme, p.WeightKg)
	if err != nil {
		return nil, err
	}
	p.AdministeredDose = dose.Display()

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

// ClearPatients empties the user's examination list, typically at the start
// of a new planning day.
func (s *Service) ClearPatients(ctx context.Context, userID string) error {
	return s.patients.DeleteAll(ctx, userID)
}

// PreviewDose computes the dose a weight/scheme pair would produce, for
// interactive form feedback.
func (s *Service) PreviewDose(ctx context.Context, schemeID uuid.UUID, weightKg float64) (float64, error) {
	scheme, err := s.schemes.Get(ctx, schemeID)
	if err != nil {
		return 0, fmt.Errorf("dosing scheme not found: %w", err)
	}
	dose, err := dosing.Compute(scheme, weightKg)
	if err != nil {
		return 0, err
	}
	return dose.Display(), nil
}
