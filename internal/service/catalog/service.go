// Package catalog manages the per-user entity catalogs (radionuclides,
// tracers, dosing schemes, day setup) grouped into named attribute sets, and
// builds the immutable snapshot handed to the plan solver.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/repository"
	"github.com/nucmed/petplan/pkg/logger"
)

const (
	snapshotTTL     = 5 * time.Minute
	cleanupInterval = 10 * time.Minute

	// DefaultSetName is the attribute set a fresh user starts with.
	DefaultSetName = "default"
)

type Service struct {
	nuclides repository.RadionuclideRepository
	tracers  repository.TracerRepository
	schemes  repository.SchemeRepository
	patients repository.PatientRepository
	daySetup repository.DaySetupRepository
	users    repository.UserRepository
	cache    *gocache.Cache
	logger   *logger.Logger
}

func NewService(
	nuclides repository.RadionuclideRepository,
	tracers repository.TracerRepository,
	schemes repository.SchemeRepository,
	patients repository.PatientRepository,
	daySetup repository.DaySetupRepository,
	users repository.UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		nuclides: nuclides,
		tracers:  tracers,
		schemes:  schemes,
		patients: patients,
		daySetup: daySetup,
		users:    users,
		cache:    gocache.New(snapshotTTL, cleanupInterval),
		logger:   log,
	}
}

func snapshotKey(userID, setName string) string {
	return "snapshot:" + userID + ":" + setName
}

// invalidate drops all cached snapshots of one user; catalog edits are rare
// enough that per-set precision is not worth tracking.
func (s *Service) invalidate(userID string) {
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, "snapshot:"+userID+":") {
			s.cache.Delete(key)
		}
	}
}

// Snapshot resolves the user's catalog for one attribute set into the
// immutable input of a plan run. Snapshots are cached briefly; any catalog
// mutation invalidates them.
func (s *Service) Snapshot(ctx context.Context, userID, setName string) (*model.CatalogSnapshot, error) {
	key := snapshotKey(userID, setName)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.CatalogSnapshot), nil
	}

	nuclides, err := s.nuclides.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load radionuclides: %w", err)
	}
	tracers, err := s.tracers.List(ctx, userID, setName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracers: %w", err)
	}
	schemes, err := s.schemes.List(ctx, userID, setName)
	if err != nil {
		return nil, fmt.Errorf("failed to load dosing schemes: %w", err)
	}
	patients, err := s.patients.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}

	// the day setup is optional: a catalog without generator state still
	// plans purchased tracers
	setup, err := s.daySetup.Get(ctx, userID)
	if err != nil {
		setup = nil
	}

	// a non-empty tracer selection in the day setup narrows the plan to
	// those tracers; an empty selection means the whole set is in play
	if setup != nil && len(setup.SelectedTracers) > 0 {
		selected := map[uuid.UUID]bool{}
		for _, id := range setup.SelectedTracers {
			selected[id] = true
		}
		tracers = lo.Filter(tracers, func(t *model.Tracer, _ int) bool { return selected[t.ID] })
	}

	snap := &model.CatalogSnapshot{
		SetName:       setName,
		Radionuclides: nuclides,
		Tracers:       tracers,
		Schemes:       schemes,
		Patients:      patients,
		DaySetup:      setup,
	}
	s.cache.Set(key, snap, gocache.DefaultExpiration)
	return snap, nil
}

// SwitchSet changes which attribute set the user's plan runs read from.
func (s *Service) SwitchSet(ctx context.Context, userID uuid.UUID, setName string) error {
	if setName == "" {
		return fmt.Errorf("set name must not be empty")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.CurrentSet = setName
	return s.users.Update(ctx, user)
}

func (s *Service) CreateRadionuclide(ctx context.Context, userID string, req *model.CreateRadionuclideRequest) (*model.Radionuclide, error) {
	n := &model.Radionuclide{
		Name:              req.Name,
		HalfLifeMinutes:   req.HalfLifeMinutes,
		GeneratorProduced: req.GeneratorProduced,
		UserID:            userID,
	}
	if err := s.nuclides.Create(ctx, n); err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return n, nil
}

func (s *Service) GetRadionuclide(ctx context.Context, id uuid.UUID) (*model.Radionuclide, error) {
	return s.nuclides.Get(ctx, id)
}

func (s *Service) ListRadionuclides(ctx context.Context, userID string) ([]*model.Radionuclide, error) {
	return s.nuclides.List(ctx, userID)
}

func (s *Service) UpdateRadionuclide(ctx context.Context, id uuid.UUID, req *model.UpdateRadionuclideRequest) (*model.Radionuclide, error) {
	n, err := s.nuclides.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		n.Name = *req.Name
	}
	if req.HalfLifeMinutes != nil {
		n.HalfLifeMinutes = *req.HalfLifeMinutes
	}
	if req.GeneratorProduced != nil {
		n.GeneratorProduced = *req.GeneratorProduced
	}
	if err := s.nuclides.Update(ctx, n); err != nil {
		return nil, err
	}
	s.invalidate(n.UserID)
	return n, nil
}

func (s *Service) DeleteRadionuclide(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.nuclides.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) CreateTracer(ctx context.Context, userID string, req *model.CreateTracerRequest) (*model.Tracer, error) {
	nuclideID, err := uuid.Parse(req.RadionuclideID)
	if err != nil {
		return nil, fmt.Errorf("invalid radionuclide id: %w", err)
	}
	if _, err := s.nuclides.Get(ctx, nuclideID); err != nil {
		return nil, fmt.Errorf("radionuclide not found: %w", err)
	}

	setName := req.SetName
	if setName == "" {
		setName = DefaultSetName
	}

	t := &model.Tracer{
		Name:             req.Name,
		RadionuclideID:   nuclideID,
		PricePerGBq:      req.PricePerGBq,
		AnySlot:          req.AnySlot,
		PermittedSlots:   req.PermittedSlots,
		QCThreshold:      req.QCThreshold,
		QCUnit:           req.QCUnit,
		QCElapsedMinutes: req.QCElapsedMinutes,
		Available:        req.Available,
		SetName:          setName,
		UserID:           userID,
	}
	if err := s.tracers.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return t, nil
}

func (s *Service) GetTracer(ctx context.Context, id uuid.UUID) (*model.Tracer, error) {
	return s.tracers.Get(ctx, id)
}

func (s *Service) ListTracers(ctx context.Context, userID, setName string) ([]*model.Tracer, error) {
	return s.tracers.List(ctx, userID, setName)
}

func (s *Service) UpdateTracer(ctx context.Context, id uuid.UUID, req *model.UpdateTracerRequest) (*model.Tracer, error) {
	t, err := s.tracers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.PricePerGBq != nil {
		t.PricePerGBq = *req.PricePerGBq
	}
	if req.AnySlot != nil {
		t.AnySlot = *req.AnySlot
	}
	if req.PermittedSlots != nil {
		t.PermittedSlots = req.PermittedSlots
	}
	if req.QCThreshold != nil {
		t.QCThreshold = *req.QCThreshold
	}
	if req.QCUnit != nil {
		t.QCUnit = *req.QCUnit
	}
	if req.QCElapsedMinutes != nil {
		t.QCElapsedMinutes = *req.QCElapsedMinutes
	}
	if req.Available != nil {
		t.Available = *req.Available
	}
	if err := s.tracers.Update(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(t.UserID)
	return t, nil
}

func (s *Service) DeleteTracer(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.tracers.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) CreateScheme(ctx context.Context, userID string, req *model.CreateDosingSchemeRequest) (*model.DosingScheme, error) {
	tracerID, err := uuid.Parse(req.TracerID)
	if err != nil {
		return nil, fmt.Errorf("invalid tracer id: %w", err)
	}
	if _, err := s.tracers.Get(ctx, tracerID); err != nil {
		return nil, fmt.Errorf("tracer not found: %w", err)
	}

	setName := req.SetName
	if setName == "" {
		setName = DefaultSetName
	}

	sch := &model.DosingScheme{
		Name:      req.Name,
		TracerID:  tracerID,
		DoseType:  req.DoseType,
		DoseValue: req.DoseValue,
		Uptake1:   req.Uptake1,
		Imaging1:  req.Imaging1,
		Uptake2:   req.Uptake2,
		Imaging2:  req.Imaging2,
		SetName:   setName,
		UserID:    userID,
	}
	if err := s.schemes.Create(ctx, sch); err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return sch, nil
}

func (s *Service) GetScheme(ctx context.Context, id uuid.UUID) (*model.DosingScheme, error) {
	return s.schemes.Get(ctx, id)
}

func (s *Service) ListSchemes(ctx context.Context, userID, setName string) ([]*model.DosingScheme, error) {
	return s.schemes.List(ctx, userID, setName)
}

func (s *Service) UpdateScheme(ctx context.Context, id uuid.UUID, req *model.UpdateDosingSchemeRequest) (*model.DosingScheme, error) {
	sch, err := s.schemes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		sch.Name = *req.Name
	}
	if req.TracerID != nil {
		tracerID, err := uuid.Parse(*req.TracerID)
		if err != nil {
			return nil, fmt.Errorf("invalid tracer id: %w", err)
		}
		sch.TracerID = tracerID
	}
	if req.DoseType != nil {
		sch.DoseType = *req.DoseType
	}
	if req.DoseValue != nil {
		sch.DoseValue = *req.DoseValue
	}
	if req.Uptake1 != nil {
		sch.Uptake1 = *req.Uptake1
	}
	if req.Imaging1 != nil {
		sch.Imaging1 = *req.Imaging1
	}
	if req.Uptake2 != nil {
		sch.Uptake2 = *req.Uptake2
	}
	if req.Imaging2 != nil {
		sch.Imaging2 = *req.Imaging2
	}
	if err := s.schemes.Update(ctx, sch); err != nil {
		return nil, err
	}
	s.invalidate(sch.UserID)
	return sch, nil
}

func (s *Service) DeleteScheme(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.schemes.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *Service) SaveDaySetup(ctx context.Context, userID string, req *model.SaveDaySetupRequest) (*model.DaySetup, error) {
	selected := make([]uuid.UUID, 0, len(req.SelectedTracers))
	for _, raw := range req.SelectedTracers {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid tracer id %q: %w", raw, err)
		}
		selected = append(selected, id)
	}

	setup := &model.DaySetup{
		GeneratorActivityGBq: req.GeneratorActivityGBq,
		GeneratorCalibrated:  req.GeneratorCalibrated,
		QAActivityMBq:        req.QAActivityMBq,
		SelectedTracers:      selected,
		UserID:               userID,
	}
	if existing, err := s.daySetup.Get(ctx, userID); err == nil {
		setup.Base = existing.Base
	}
	if err := s.daySetup.Save(ctx, setup); err != nil {
		return nil, err
	}
	s.invalidate(userID)
	return setup, nil
}

func (s *Service) GetDaySetup(ctx context.Context, userID string) (*model.DaySetup, error) {
	return s.daySetup.Get(ctx, userID)
}

// SeedDefaults populates a fresh user's catalog with the prefill nuclides,
// tracers and dosing schemes. Existing entries are left alone.
func (s *Service) SeedDefaults(ctx context.Context, userID string) error {
	existing, err := s.nuclides.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	nuclideByName := map[string]*model.Radionuclide{}
	for _, def := range model.DefaultRadionuclides {
		n := def
		n.UserID = userID
		if err := s.nuclides.Create(ctx, &n); err != nil {
			return fmt.Errorf("failed to seed radionuclide %s: %w", n.Name, err)
		}
		nuclideByName[n.Name] = &n
	}

	tracerByName := map[string]*model.Tracer{}
	for _, name := range model.DefaultTracerNames {
		prefix := strings.SplitN(name, "-", 2)[0]
		nuclide, ok := nuclideByName[prefix]
		if !ok {
			continue
		}
		t := &model.Tracer{
			Name:           name,
			RadionuclideID: nuclide.ID,
			AnySlot:        true,
			Available:      false,
			SetName:        DefaultSetName,
			UserID:         userID,
		}
		if err := s.tracers.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to seed tracer %s: %w", name, err)
		}
		tracerByName[name] = t
	}

	for _, def := range model.DefaultDosingSchemes {
		tracer, ok := tracerByName[def.Tracer]
		if !ok {
			continue
		}
		sch := &model.DosingScheme{
			Name:      def.Name,
			TracerID:  tracer.ID,
			DoseType:  def.DoseType,
			DoseValue: def.DoseValue,
			Uptake1:   def.Uptake1,
			Imaging1:  def.Imaging1,
			Uptake2:   def.Uptake2,
			Imaging2:  def.Imaging2,
			SetName:   DefaultSetName,
			UserID:    userID,
		}
		if err := s.schemes.Create(ctx, sch); err != nil {
			return fmt.Errorf("failed to seed dosing scheme %s: %w", def.Name, err)
		}
	}

	if s.logger != nil {
		s.logger.Info(fmt.Sprintf("seeded default catalog for user %s: %d nuclides, %d tracers, %d schemes",
			userID, len(nuclideByName), len(tracerByName), len(model.DefaultDosingSchemes)))
	}
	return nil
}

// SetNames lists the attribute sets present in the user's tracer catalog.
func (s *Service) SetNames(ctx context.Context, userID string) ([]string, error) {
	tracers, err := s.tracers.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	names := lo.Uniq(lo.Map(tracers, func(t *model.Tracer, _ int) string { return t.SetName }))
	return names, nil
}
