package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucmed/petplan/internal/model"
	apperrors "github.com/nucmed/petplan/pkg/errors"
)

type snapshotBuilder struct {
	snap *model.CatalogSnapshot
}

func newSnapshot() *snapshotBuilder {
	return &snapshotBuilder{snap: &model.CatalogSnapshot{SetName: "default"}}
}

func (b *snapshotBuilder) radionuclide(name string, halfLife float64, generator bool) *model.Radionuclide {
	r := &model.Radionuclide{Name: name, HalfLifeMinutes: halfLife, GeneratorProduced: generator}
	r.ID = uuid.New()
	b.snap.Radionuclides = append(b.snap.Radionuclides, r)
	return r
}

func (b *snapshotBuilder) tracer(name string, nuclide *model.Radionuclide, price float64, anySlot bool, slots ...int64) *model.Tracer {
	t := &model.Tracer{
		Name:           name,
		RadionuclideID: nuclide.ID,
		PricePerGBq:    price,
		AnySlot:        anySlot,
		PermittedSlots: slots,
		Available:      true,
	}
	t.ID = uuid.New()
	b.snap.Tracers = append(b.snap.Tracers, t)
	return t
}

func (b *snapshotBuilder) scheme(name string, tracer *model.Tracer, doseType model.DoseType, value float64, u1, i1, u2, i2 int) *model.DosingScheme {
	s := &model.DosingScheme{
		Name: name, TracerID: tracer.ID,
		DoseType: doseType, DoseValue: value,
		Uptake1: u1, Imaging1: i1, Uptake2: u2, Imaging2: i2,
	}
	s.ID = uuid.New()
	b.snap.Schemes = append(b.snap.Schemes, s)
	return s
}

func (b *snapshotBuilder) patient(surname string, weight float64, scheme *model.DosingScheme, fixed *int) *model.Patient {
	p := &model.Patient{Surname: surname, WeightKg: weight, Immobile: false}
	p.ID = uuid.New()
	if scheme != nil {
		p.SchemeID = scheme.ID
	} else {
		p.SchemeID = uuid.New()
	}
	p.FixedStartBlock = fixed
	b.snap.Patients = append(b.snap.Patients, p)
	return p
}

func (b *snapshotBuilder) daySetup(generatorGBq float64) {
	b.daySetupCalibrated(generatorGBq, time.Now())
}

func (b *snapshotBuilder) daySetupCalibrated(generatorGBq float64, calibrated time.Time) {
	b.snap.DaySetup = &model.DaySetup{GeneratorActivityGBq: generatorGBq, GeneratorCalibrated: calibrated}
}

func intPtr(v int) *int { return &v }

func TestSolve_SinglePatientPurchasedTracer(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("18F", 109.8, false)
	tracer := b.tracer("18F-FDG", nuclide, 5000, true)
	scheme := b.scheme("onko", tracer, model.DoseTypePerKg, 3.7, 60, 25, 0, 0)
	b.patient("Novak", 70, scheme, nil)

	schedule, report, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	require.NoError(t, err)
	require.Nil(t, report)
	require.Len(t, schedule.Patients, 1)

	p := schedule.Patients[0]
	assert.Equal(t, "Novak", p.Surname)
	assert.InDelta(t, 259.0, p.DoseMBq, 1e-9)
	assert.Equal(t, 0, p.StartBlock, "earliest start wins when costs tie")
	assert.Equal(t, "06:00", p.StartTime)

	// the lot is bought at the administration block, so no decay waste
	assert.InDelta(t, 259.0/1000*5000, schedule.TotalCost, 1e-6)
	assert.True(t, schedule.OptimalityProven)

	require.Len(t, schedule.Tracers, 1)
	trace := schedule.Tracers[0]
	assert.InDelta(t, 259.0, trace.Purchases[0], 1e-9)
	for _, level := range trace.Levels {
		assert.GreaterOrEqual(t, level, 0.0)
	}
}

func TestSolve_OccupancyLabels(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("18F", 109.8, false)
	tracer := b.tracer("18F-FDG", nuclide, 5000, true)
	scheme := b.scheme("onko", tracer, model.DoseTypeFixed, 150, 60, 20, 0, 0)
	b.patient("Svoboda", 0, scheme, intPtr(4))

	schedule, _, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	require.NoError(t, err)

	occ := schedule.Patients[0].Occupancy
	for blk := 4; blk < 10; blk++ {
		assert.Equal(t, model.PhaseUptake1, occ[blk])
	}
	for blk := 10; blk < 12; blk++ {
		assert.Equal(t, model.PhaseImaging1, occ[blk])
	}
	assert.Equal(t, model.PhaseEmpty, occ[3])
	assert.Equal(t, model.PhaseEmpty, occ[12])
}

func TestSolve_PermittedSlotsRestrictStart(t *testing.T) {
	// delivery only at 08:00 and 10:00; both leave room for the 80-minute
	// procedure, and the earlier one wins the tie
	b := newSnapshot()
	nuclide := b.radionuclide("18F", 109.8, false)
	tracer := b.tracer("18F-Vizamyl", nuclide, 8000, false, 12, 24)
	scheme := b.scheme("amyloid", tracer, model.DoseTypeFixed, 185, 60, 20, 0, 0)
	b.patient("Dvorak", 0, scheme, nil)

	schedule, _, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	require.NoError(t, err)
	assert.Equal(t, 12, schedule.Patients[0].StartBlock)
	assert.Equal(t, "08:00", schedule.Patients[0].StartTime)
}

func TestSolve_TwoPatientsNeverShareScanner(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("18F", 109.8, false)
	tracer := b.tracer("18F-FDG", nuclide, 5000, true)
	scheme := b.scheme("onko", tracer, model.DoseTypePerKg, 2.5, 60, 25, 0, 0)
	b.patient("Novak", 70, scheme, nil)
	b.patient("Svoboda", 90, scheme, nil)

	schedule, _, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	require.NoError(t, err)
	require.Len(t, schedule.Patients, 2)

	for blk := 0; blk < schedule.Blocks; blk++ {
		imaging := 0
		for _, p := range schedule.Patients {
			if p.Occupancy[blk] == model.PhaseImaging1 || p.Occupancy[blk] == model.PhaseImaging2 {
				imaging++
			}
		}
		assert.LessOrEqual(t, imaging, 1, "block %d double-booked", blk)
	}
}

func TestSolve_FixedTimeConflict(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("18F", 109.8, false)
	tracer := b.tracer("18F-FDG", nuclide, 5000, true)
	scheme := b.scheme("onko", tracer, model.DoseTypeFixed, 150, 60, 20, 0, 0)
	p1 := b.patient("Novak", 0, scheme, intPtr(12))
	p2 := b.patient("Svoboda", 0, scheme, intPtr(12))

	schedule, report, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	assert.Nil(t, schedule)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInfeasible, apperrors.CodeOf(err))

	require.NotNil(t, report)
	assert.Equal(t, model.ConstraintResourceOverlap, report.Class)
	assert.ElementsMatch(t, []uuid.UUID{p1.ID, p2.ID}, report.Patients)
}

func TestSolve_GeneratorTracer(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("68Ga", 67.7, true)
	tracer := b.tracer("68Ga-PSMA-11", nuclide, 0, true)
	scheme := b.scheme("prostata", tracer, model.DoseTypePerKg, 2, 60, 30, 0, 0)
	b.patient("Novak", 80, scheme, nil)
	b.daySetup(1.0)

	schedule, _, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	require.NoError(t, err)

	start := schedule.Patients[0].StartBlock
	assert.True(t, schedule.GeneratorRuns[start], "elution expected at the administration block")
	assert.InDelta(t, 0, schedule.TotalCost, 1e-9, "in-house elution costs nothing")
}

func TestSolve_GeneratorWithoutDaySetup(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("68Ga", 67.7, true)
	tracer := b.tracer("68Ga-PSMA-11", nuclide, 0, true)
	scheme := b.scheme("prostata", tracer, model.DoseTypePerKg, 2, 60, 30, 0, 0)
	b.patient("Novak", 80, scheme, nil)

	schedule, report, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	assert.Nil(t, schedule)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInsufficientInventory, apperrors.CodeOf(err))
	require.NotNil(t, report)
	assert.Equal(t, model.ConstraintInventory, report.Class)
	assert.Contains(t, report.Tracers, tracer.ID)
}

func TestSolve_GeneratorCooldownBlocksSecondElution(t *testing.T) {
	// two near-simultaneous 900 MBq doses exceed one elution's yield and
	// the cooldown forbids a second run in time
	b := newSnapshot()
	nuclide := b.radionuclide("68Ga", 67.7, true)
	tracer := b.tracer("68Ga-PSMA-11", nuclide, 0, true)
	scheme := b.scheme("prostata", tracer, model.DoseTypeFixed, 900, 0, 10, 0, 0)
	b.patient("Novak", 0, scheme, intPtr(0))
	b.patient("Svoboda", 0, scheme, intPtr(1))
	b.daySetup(1.0)

	schedule, report, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	assert.Nil(t, schedule)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInsufficientInventory, apperrors.CodeOf(err))
	assert.Equal(t, model.ConstraintInventory, report.Class)
}

func TestSolve_GeneratorParentDecaysSinceCalibration(t *testing.T) {
	build := func(calibrated time.Time) (*model.CatalogSnapshot, *model.Tracer) {
		b := newSnapshot()
		nuclide := b.radionuclide("68Ga", 67.7, true)
		tracer := b.tracer("68Ga-PSMA-11", nuclide, 0, true)
		scheme := b.scheme("prostata", tracer, model.DoseTypeFixed, 800, 0, 10, 0, 0)
		b.patient("Novak", 0, scheme, nil)
		b.daySetupCalibrated(1.0, calibrated)
		return b.snap, tracer
	}

	// a fresh 1.0 GBq generator covers the 800 MBq dose
	snap, _ := build(time.Now())
	_, _, err := New(Options{}, nil).Solve(context.Background(), snap)
	require.NoError(t, err)

	// one parent half-life later only ~500 MBq of parent remains, so no
	// elution can reach 800 MBq no matter when the patient starts
	snap, tracer := build(time.Now().AddDate(0, 0, -271))
	schedule, report, err := New(Options{}, nil).Solve(context.Background(), snap)
	assert.Nil(t, schedule)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInsufficientInventory, apperrors.CodeOf(err))
	require.NotNil(t, report)
	assert.Equal(t, model.ConstraintInventory, report.Class)
	assert.Contains(t, report.Tracers, tracer.ID)
}

func TestSolve_InventoryReportNamesEveryUnsuppliableTracer(t *testing.T) {
	b := newSnapshot()
	ga := b.radionuclide("68Ga", 67.7, true)
	rb := b.radionuclide("82Rb", 1.27, true)
	psma := b.tracer("68Ga-PSMA-11", ga, 0, true)
	chlorid := b.tracer("82Rb-chlorid", rb, 0, true)
	s1 := b.scheme("prostata", psma, model.DoseTypeFixed, 150, 0, 10, 0, 0)
	s2 := b.scheme("perfuze", chlorid, model.DoseTypeFixed, 150, 0, 10, 0, 0)
	b.patient("Novak", 0, s1, intPtr(0))
	b.patient("Svoboda", 0, s2, intPtr(20))
	// no day setup, so neither generator tracer can be supplied

	schedule, report, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	assert.Nil(t, schedule)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInsufficientInventory, apperrors.CodeOf(err))
	require.NotNil(t, report)
	assert.Equal(t, model.ConstraintInventory, report.Class)
	assert.ElementsMatch(t, []uuid.UUID{psma.ID, chlorid.ID}, report.Tracers)
}

func TestSolve_ExplicitZeroCooldownAllowsBackToBackElutions(t *testing.T) {
	build := func() *model.CatalogSnapshot {
		b := newSnapshot()
		nuclide := b.radionuclide("82Rb", 1.27, true)
		tracer := b.tracer("82Rb-chlorid", nuclide, 0, true)
		scheme := b.scheme("perfuze", tracer, model.DoseTypeFixed, 900, 0, 10, 0, 0)
		b.patient("Novak", 0, scheme, intPtr(0))
		b.patient("Svoboda", 0, scheme, intPtr(1))
		b.daySetup(1.0)
		return b.snap
	}

	_, _, err := New(Options{}, nil).Solve(context.Background(), build())
	require.Error(t, err, "the default cooldown forbids the second run")

	schedule, _, err := New(Options{GeneratorCooldownBlocks: -1}, nil).Solve(context.Background(), build())
	require.NoError(t, err)
	assert.True(t, schedule.GeneratorRuns[0])
	assert.True(t, schedule.GeneratorRuns[1])
}

func TestSolve_InconsistentPatientsExcludedNotFatal(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("18F", 109.8, false)
	tracer := b.tracer("18F-FDG", nuclide, 5000, true)
	scheme := b.scheme("onko", tracer, model.DoseTypePerKg, 2.5, 60, 25, 0, 0)
	b.patient("Novak", 70, scheme, nil)
	// scheme missing from the catalog, and a per-kg scheme with no weight
	orphan := b.patient("Orphan", 70, nil, nil)
	weightless := b.patient("Hruba", 0, scheme, nil)

	schedule, report, err := New(Options{}, nil).Solve(context.Background(), b.snap)
	require.NoError(t, err)
	require.Nil(t, report)

	require.Len(t, schedule.Patients, 1)
	assert.Equal(t, "Novak", schedule.Patients[0].Surname)

	require.Len(t, schedule.Excluded, 2)
	excludedIDs := []uuid.UUID{schedule.Excluded[0].PatientID, schedule.Excluded[1].PatientID}
	assert.ElementsMatch(t, []uuid.UUID{orphan.ID, weightless.ID}, excludedIDs)
}

func TestSolve_Deterministic(t *testing.T) {
	build := func() *model.CatalogSnapshot {
		b := newSnapshot()
		nuclide := b.radionuclide("18F", 109.8, false)
		tracer := b.tracer("18F-FDG", nuclide, 5000, false, 0, 6, 12, 18, 24)
		scheme := b.scheme("onko", tracer, model.DoseTypePerKg, 2.5, 60, 25, 0, 0)
		b.patient("A", 70, scheme, nil)
		b.patient("B", 85, scheme, nil)
		b.patient("C", 60, scheme, nil)
		return b.snap
	}

	first, _, err := New(Options{}, nil).Solve(context.Background(), build())
	require.NoError(t, err)
	second, _, err := New(Options{}, nil).Solve(context.Background(), build())
	require.NoError(t, err)

	require.Len(t, second.Patients, len(first.Patients))
	for i := range first.Patients {
		assert.Equal(t, first.Patients[i].StartBlock, second.Patients[i].StartBlock)
	}
	assert.InDelta(t, first.TotalCost, second.TotalCost, 1e-9)
	assert.True(t, first.OptimalityProven)
}

func TestSolve_TimeoutReturnsBestSoFar(t *testing.T) {
	b := newSnapshot()
	nuclide := b.radionuclide("18F", 109.8, false)
	tracer := b.tracer("18F-FDG", nuclide, 5000, true)
	scheme := b.scheme("onko", tracer, model.DoseTypePerKg, 2.5, 60, 25, 0, 0)
	b.patient("A", 70, scheme, nil)
	b.patient("B", 85, scheme, nil)
	b.patient("C", 60, scheme, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // expire before the search starts

	schedule, _, err := New(Options{}, nil).Solve(ctx, b.snap)
	require.NoError(t, err, "a feasible plan is found before the first cancellation check")
	assert.False(t, schedule.OptimalityProven)
	require.Len(t, schedule.Patients, 3)
}
