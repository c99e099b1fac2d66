// Package optimizer joins the decay, dosing, timeline, inventory and scanner
// components into one constrained search: assign every patient a feasible
// start block so the scanner is never double-booked and every tracer's
// inventory stays non-negative, minimizing total procurement cost.
package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/optimizer/decay"
	"github.com/nucmed/petplan/internal/optimizer/dosing"
	"github.com/nucmed/petplan/internal/optimizer/inventory"
	"github.com/nucmed/petplan/internal/optimizer/scanner"
	"github.com/nucmed/petplan/internal/optimizer/timeline"
	apperrors "github.com/nucmed/petplan/pkg/errors"
	"github.com/nucmed/petplan/pkg/logger"
)

// Options tune the solver. Zero values fall back to the defaults below;
// negative values on the generator fields mean an explicit zero.
type Options struct {
	Grid timeline.Grid

	// GeneratorCooldownBlocks is the minimum spacing between elution runs.
	// Zero picks the default of 3 blocks; pass a negative value for no
	// cooldown at all.
	GeneratorCooldownBlocks int

	// GeneratorRunCostCZK prices one elution run. In-house elution is
	// typically free relative to purchased lots.
	GeneratorRunCostCZK float64

	// GeneratorInitialBuildupMinutes is the daughter ingrowth assumed at
	// day start, i.e. time since the previous day's last elution. Zero
	// picks the overnight default of 720; negative means a generator
	// eluted dry right before day start.
	GeneratorInitialBuildupMinutes float64

	// GeneratorParentHalfLifeDays governs how the calibrated parent
	// activity decays between calibration and the plan day. Defaults to
	// the Ge-68 half-life of 270.8 days.
	GeneratorParentHalfLifeDays float64
}

func (o Options) withDefaults() Options {
	if o.Grid.Blocks == 0 {
		o.Grid = timeline.DefaultGrid()
	}
	switch {
	case o.GeneratorCooldownBlocks == 0:
		o.GeneratorCooldownBlocks = 3
	case o.GeneratorCooldownBlocks < 0:
		o.GeneratorCooldownBlocks = 0
	}
	switch {
	case o.GeneratorInitialBuildupMinutes == 0:
		o.GeneratorInitialBuildupMinutes = 720
	case o.GeneratorInitialBuildupMinutes < 0:
		o.GeneratorInitialBuildupMinutes = 0
	}
	if o.GeneratorParentHalfLifeDays == 0 {
		o.GeneratorParentHalfLifeDays = 270.8
	}
	return o
}

// Solver runs plan computations. It holds no per-run state; each Solve call
// operates on its own snapshot and is safe to invoke concurrently.
type Solver struct {
	opts Options
	log  *logger.Logger
}

// New returns a solver with the given options.
func New(opts Options, log *logger.Logger) *Solver {
	return &Solver{opts: opts.withDefaults(), log: log}
}

// patientCase is one schedulable patient with everything resolved up front.
type patientCase struct {
	index     int // insertion order in the snapshot
	patient   *model.Patient
	scheme    *model.DosingScheme
	tracer    *model.Tracer
	nuclide   *model.Radionuclide
	dose      dosing.Dose
	starts    []int
	footprint map[int]timeline.Footprint
}

// administration is one inventory draw: a dose of a tracer at a block.
type administration struct {
	block   int
	doseMBq float64
}

// Solve computes a day plan for the snapshot. On success the report is nil.
// When no valid joint assignment exists it returns an Infeasible or
// InsufficientInventory error together with a report naming the constraint
// class and the entities involved. Context cancellation or deadline expiry
// ends the search early with the best feasible plan found so far, marked
// optimality-unproven.
func (s *Solver) Solve(ctx context.Context, snap *model.CatalogSnapshot) (*model.Schedule, *model.InfeasibilityReport, error) {
	started := time.Now()
	grid := s.opts.Grid

	cases, excluded := s.prepare(snap)

	for _, c := range cases {
		if len(c.starts) == 0 {
			report := &model.InfeasibilityReport{
				Class:    model.ConstraintResourceOverlap,
				Patients: []uuid.UUID{c.patient.ID},
				Message:  fmt.Sprintf("patient %s has no feasible start block", c.patient.Surname),
			}
			return nil, report, apperrors.Infeasible(report.Message)
		}
	}

	search := &searchState{
		solver: s,
		snap:   snap,
		grid:   grid,
		cases:  orderForSearch(cases),
		busy:   scanner.NewTimeline(grid.Blocks),
		starts: make(map[int]int),
	}
	search.run(ctx)

	if search.best == nil {
		report := search.diagnose()
		if report.Class == model.ConstraintInventory {
			return nil, report, apperrors.InsufficientInventory(report.Message)
		}
		return nil, report, apperrors.Infeasible(report.Message)
	}

	schedule := s.assemble(snap, cases, search.best, excluded, search.exhausted, started)
	if s.log != nil {
		s.log.Info(fmt.Sprintf("plan solved: %d patients, cost %.2f, optimal=%v, %dms",
			len(schedule.Patients), schedule.TotalCost, schedule.OptimalityProven, schedule.SolveMillis))
	}
	return schedule, nil, nil
}

// prepare resolves every patient against the catalog. Patients whose records
// are inconsistent are excluded with a per-patient reason; the rest proceed.
func (s *Solver) prepare(snap *model.CatalogSnapshot) ([]*patientCase, []model.ExcludedPatient) {
	var cases []*patientCase
	var excluded []model.ExcludedPatient

	exclude := func(p *model.Patient, reason string) {
		excluded = append(excluded, model.ExcludedPatient{PatientID: p.ID, Reason: reason})
		if s.log != nil {
			s.log.Warn(fmt.Sprintf("patient %s excluded from plan: %s", p.Surname, reason))
		}
	}

	for i, p := range snap.Patients {
		scheme := snap.SchemeByID(p.SchemeID)
		if scheme == nil {
			exclude(p, "dosing scheme not found in catalog")
			continue
		}
		tracer := snap.TracerByID(scheme.TracerID)
		if tracer == nil || !tracer.Available {
			exclude(p, "tracer not available in catalog")
			continue
		}
		nuclide := snap.RadionuclideByID(tracer.RadionuclideID)
		if nuclide == nil || nuclide.HalfLifeMinutes <= 0 {
			exclude(p, "radionuclide missing or has invalid half-life")
			continue
		}
		dose, err := dosing.ComputeForPatient(snap, p)
		if err != nil {
			exclude(p, err.Error())
			continue
		}

		c := &patientCase{
			index:     i,
			patient:   p,
			scheme:    scheme,
			tracer:    tracer,
			nuclide:   nuclide,
			dose:      dose,
			starts:    timeline.FeasibleStarts(s.opts.Grid, scheme, tracer, p.FixedStartBlock),
			footprint: map[int]timeline.Footprint{},
		}
		for _, b := range c.starts {
			c.footprint[b] = s.opts.Grid.FootprintFor(scheme, b)
		}
		cases = append(cases, c)
	}
	return cases, excluded
}

// orderForSearch sorts cases most-constrained-first so the search fails fast.
// The result does not depend on exploration order: the tie-break total order
// alone picks the winner among complete candidates.
func orderForSearch(cases []*patientCase) []*patientCase {
	ordered := append([]*patientCase(nil), cases...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if len(ordered[i].starts) != len(ordered[j].starts) {
			return len(ordered[i].starts) < len(ordered[j].starts)
		}
		return ordered[i].index < ordered[j].index
	})
	return ordered
}

// solution is one complete priced assignment.
type solution struct {
	starts    map[int]int // case insertion index -> start block
	ledgers   map[uuid.UUID]*inventory.Ledger
	candidate scanner.Candidate
}

type searchState struct {
	solver *Solver
	snap   *model.CatalogSnapshot
	grid   timeline.Grid
	cases  []*patientCase
	busy   *scanner.Timeline
	starts map[int]int // insertion index -> chosen start, for cases placed so far

	best          *solution
	exhausted     bool
	sawAssignment bool               // at least one overlap-free complete assignment existed
	supplyFailed  map[uuid.UUID]bool // tracers that could not be supplied
	cancelled     bool
	nodes         int
}

func (st *searchState) run(ctx context.Context) {
	st.supplyFailed = map[uuid.UUID]bool{}
	st.dfs(ctx, 0)
	st.exhausted = !st.cancelled
}

func (st *searchState) dfs(ctx context.Context, depth int) {
	if st.cancelled {
		return
	}
	st.nodes++
	if st.nodes%256 == 0 {
		select {
		case <-ctx.Done():
			st.cancelled = true
			return
		default:
		}
	}

	if depth == len(st.cases) {
		st.sawAssignment = true
		st.price()
		return
	}

	c := st.cases[depth]
	for _, b := range c.starts {
		fp := c.footprint[b]
		ivs := fp.ImagingIntervals()
		if !st.busy.CanReserve(ivs) {
			continue
		}
		st.busy.Reserve(ivs)
		st.starts[c.index] = b
		st.dfs(ctx, depth+1)
		delete(st.starts, c.index)
		st.busy.Release(ivs)
		if st.cancelled {
			return
		}
	}
}

// price builds the supply plan for the current complete assignment and keeps
// it when it beats the best under the tie-break order.
func (st *searchState) price() {
	ledgers, cost, err := st.solver.supplyPlan(st.snap, st.cases, st.starts, st.supplyFailed)
	if err != nil {
		return
	}

	footprints := make([]timeline.Footprint, 0, len(st.cases))
	startsInOrder := make([]int, 0, len(st.cases))
	var immobile []int
	for _, c := range sortedByIndex(st.cases) {
		b := st.starts[c.index]
		footprints = append(footprints, c.footprint[b])
		startsInOrder = append(startsInOrder, b)
		if c.patient.Immobile {
			immobile = append(immobile, b)
		}
	}

	cand := scanner.Candidate{
		CostCZK:        cost,
		IdleGapBlocks:  scanner.IdleGapOf(st.grid.Blocks, footprints),
		ImmobileStarts: immobile,
		Starts:         startsInOrder,
	}
	if st.best == nil || cand.Better(st.best.candidate) {
		st.best = &solution{
			starts:    lo.Assign(map[int]int{}, st.starts),
			ledgers:   ledgers,
			candidate: cand,
		}
	}
}

func sortedByIndex(cases []*patientCase) []*patientCase {
	out := append([]*patientCase(nil), cases...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

// diagnose classifies why no solution exists once the search space is spent.
func (st *searchState) diagnose() *model.InfeasibilityReport {
	if st.sawAssignment {
		tracers := lo.Keys(st.supplyFailed)
		sort.Slice(tracers, func(i, j int) bool { return tracers[i].String() < tracers[j].String() })
		return &model.InfeasibilityReport{
			Class:   model.ConstraintInventory,
			Tracers: tracers,
			Message: "no assignment can be supplied from available and purchasable activity",
		}
	}

	footprints := make([]timeline.Footprint, len(st.cases))
	hasFixed := make([]bool, len(st.cases))
	for i, c := range st.cases {
		hasFixed[i] = c.patient.FixedStartBlock != nil
		if hasFixed[i] && len(c.starts) > 0 {
			footprints[i] = c.footprint[c.starts[0]]
		}
	}
	if conflicts := scanner.FixedConflicts(footprints, hasFixed); len(conflicts) > 0 {
		ids := map[uuid.UUID]struct{}{}
		for _, cf := range conflicts {
			ids[st.cases[cf.First].patient.ID] = struct{}{}
			ids[st.cases[cf.Second].patient.ID] = struct{}{}
		}
		patients := lo.Keys(ids)
		sort.Slice(patients, func(i, j int) bool { return patients[i].String() < patients[j].String() })
		return &model.InfeasibilityReport{
			Class:    model.ConstraintResourceOverlap,
			Patients: patients,
			Message:  "fixed administration times force overlapping imaging intervals",
		}
	}

	patients := make([]uuid.UUID, 0, len(st.cases))
	for _, c := range sortedByIndex(st.cases) {
		patients = append(patients, c.patient.ID)
	}
	return &model.InfeasibilityReport{
		Class:    model.ConstraintResourceOverlap,
		Patients: patients,
		Message:  "no overlap-free joint assignment of start blocks exists",
	}
}

// supplyPlan prices one complete assignment: it replays all administrations
// chronologically per tracer, eluting the generator for generator-produced
// nuclides and otherwise purchasing the smallest lot that covers the
// shortfall at the latest permitted block not after the administration.
func (s *Solver) supplyPlan(snap *model.CatalogSnapshot, cases []*patientCase, starts map[int]int, failed map[uuid.UUID]bool) (map[uuid.UUID]*inventory.Ledger, float64, error) {
	byTracer := map[uuid.UUID][]administration{}
	caseByTracer := map[uuid.UUID]*patientCase{}
	for _, c := range cases {
		b, ok := starts[c.index]
		if !ok {
			continue
		}
		for _, adm := range c.footprint[b].AdministrationBlocks() {
			byTracer[c.tracer.ID] = append(byTracer[c.tracer.ID], administration{block: adm, doseMBq: c.dose.Exact})
		}
		caseByTracer[c.tracer.ID] = c
	}

	tracerIDs := lo.Keys(byTracer)
	sort.Slice(tracerIDs, func(i, j int) bool { return tracerIDs[i].String() < tracerIDs[j].String() })

	ledgers := map[uuid.UUID]*inventory.Ledger{}
	total := 0.0
	var firstErr error
	for _, tracerID := range tracerIDs {
		c := caseByTracer[tracerID]
		adms := byTracer[tracerID]
		sort.SliceStable(adms, func(i, j int) bool { return adms[i].block < adms[j].block })

		// keep going past a failure so the report names every tracer
		// that cannot be supplied, not just the first one
		ledger, err := s.supplyTracer(snap, c.tracer, c.nuclide, adms)
		if err != nil {
			failed[tracerID] = true
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ledgers[tracerID] = ledger
		total += ledger.TotalCostCZK()
	}
	if firstErr != nil {
		return nil, 0, firstErr
	}
	return ledgers, total, nil
}

func (s *Solver) supplyTracer(snap *model.CatalogSnapshot, tracer *model.Tracer, nuclide *model.Radionuclide, adms []administration) (*inventory.Ledger, error) {
	grid := s.opts.Grid
	ledger, err := inventory.NewLedger(nuclide.HalfLifeMinutes, grid.BlockMinutes)
	if err != nil {
		return nil, err
	}

	lastRun := -1 // block of the previous elution, -1 for none today
	for _, adm := range adms {
		shortfall := adm.doseMBq - ledger.AvailableAt(adm.block)
		if shortfall <= 1e-9 {
			if err := ledger.Consume(adm.block, adm.doseMBq); err != nil {
				return nil, err
			}
			continue
		}

		if nuclide.GeneratorProduced {
			if err := s.elute(snap, nuclide, ledger, adm.block, &lastRun); err != nil {
				return nil, err
			}
		} else {
			block, ok := latestPurchaseBlock(tracer, adm.block)
			if !ok {
				return nil, apperrors.InsufficientInventory(fmt.Sprintf(
					"tracer %s has no permitted delivery block at or before block %d", tracer.Name, adm.block))
			}
			frac, err := decay.Fraction(nuclide.HalfLifeMinutes, float64((adm.block-block)*grid.BlockMinutes))
			if err != nil || frac <= 0 {
				return nil, apperrors.InsufficientInventory(fmt.Sprintf(
					"tracer %s fully decays between delivery block %d and administration block %d", tracer.Name, block, adm.block))
			}
			if _, err := ledger.AddPurchase(block, shortfall/frac, tracer.PricePerGBq); err != nil {
				return nil, err
			}
		}

		if err := ledger.Consume(adm.block, adm.doseMBq); err != nil {
			return nil, err
		}
	}
	return ledger, nil
}

// elute runs the generator at the given block. Yield is the daughter
// ingrowth since the previous run scaled by the parent activity, which
// itself decays from the calibrated value over the generator's age; the run
// fails when the cooldown since the last elution has not elapsed.
func (s *Solver) elute(snap *model.CatalogSnapshot, nuclide *model.Radionuclide, ledger *inventory.Ledger, block int, lastRun *int) error {
	if snap.DaySetup == nil || snap.DaySetup.GeneratorActivityGBq <= 0 {
		return apperrors.InsufficientInventory(fmt.Sprintf(
			"radionuclide %s is generator-produced but the day setup has no generator activity", nuclide.Name))
	}
	if *lastRun >= 0 && block-*lastRun < s.opts.GeneratorCooldownBlocks {
		return apperrors.InsufficientInventory(fmt.Sprintf(
			"generator cooldown not elapsed before block %d", block))
	}

	elapsed := float64(block*s.opts.Grid.BlockMinutes) + s.opts.GeneratorInitialBuildupMinutes
	if *lastRun >= 0 {
		elapsed = float64((block - *lastRun) * s.opts.Grid.BlockMinutes)
	}
	parentMBq, err := s.parentActivityMBq(snap.DaySetup)
	if err != nil {
		return err
	}
	yield, err := decay.Buildup(nuclide.HalfLifeMinutes, elapsed)
	if err != nil {
		return err
	}
	if err := ledger.AddGeneratorRun(block, parentMBq*yield, s.opts.GeneratorRunCostCZK); err != nil {
		return err
	}
	*lastRun = block
	return nil
}

// parentActivityMBq is the generator's parent activity on the plan day: the
// calibrated value decayed by the parent half-life over the time since
// calibration. A zero calibration timestamp means calibrated now.
func (s *Solver) parentActivityMBq(setup *model.DaySetup) (float64, error) {
	parentMBq := setup.GeneratorActivityGBq * 1000
	if setup.GeneratorCalibrated.IsZero() {
		return parentMBq, nil
	}
	ageMinutes := time.Since(setup.GeneratorCalibrated).Minutes()
	if ageMinutes <= 0 {
		return parentMBq, nil
	}
	frac, err := decay.Fraction(s.opts.GeneratorParentHalfLifeDays*24*60, ageMinutes)
	if err != nil {
		return 0, err
	}
	return parentMBq * frac, nil
}

// latestPurchaseBlock picks the delivery block for a purchased lot: the
// administration block itself for "anytime" tracers, otherwise the latest
// permitted slot not after it. Buying as late as possible minimizes decay
// waste, and with linear pricing that choice is optimal per administration.
func latestPurchaseBlock(tracer *model.Tracer, admBlock int) (int, bool) {
	if tracer.AnySlot {
		return admBlock, true
	}
	best, ok := -1, false
	for _, s := range tracer.PermittedSlots {
		if b := int(s); b <= admBlock && b > best {
			best, ok = b, true
		}
	}
	return best, ok
}

// assemble renders the winning solution as the output Schedule.
func (s *Solver) assemble(snap *model.CatalogSnapshot, cases []*patientCase, sol *solution, excluded []model.ExcludedPatient, exhausted bool, started time.Time) *model.Schedule {
	grid := s.opts.Grid
	schedule := &model.Schedule{
		Blocks:           grid.Blocks,
		BlockMinutes:     grid.BlockMinutes,
		DayStart:         grid.Clock(0),
		GeneratorRuns:    make([]bool, grid.Blocks),
		TotalCost:        sol.candidate.CostCZK,
		OptimalityProven: exhausted,
		Excluded:         excluded,
		SolveMillis:      time.Since(started).Milliseconds(),
	}

	for _, c := range sortedByIndex(cases) {
		b := sol.starts[c.index]
		schedule.Patients = append(schedule.Patients, model.PatientPlacement{
			PatientID:  c.patient.ID,
			Surname:    c.patient.Surname,
			StartBlock: b,
			StartTime:  grid.Clock(b),
			DoseMBq:    c.dose.Display(),
			Occupancy:  c.footprint[b].Labels(grid.Blocks),
		})
	}

	tracerIDs := lo.Keys(sol.ledgers)
	sort.Slice(tracerIDs, func(i, j int) bool { return tracerIDs[i].String() < tracerIDs[j].String() })
	for _, id := range tracerIDs {
		ledger := sol.ledgers[id]
		tracer := snap.TracerByID(id)
		schedule.Tracers = append(schedule.Tracers, model.TracerTrace{
			TracerID:  id,
			Name:      tracer.Name,
			Purchases: ledger.PurchaseAmounts(grid.Blocks),
			Levels:    ledger.Levels(grid.Blocks),
		})
		for _, b := range ledger.GeneratorBlocks() {
			if b >= 0 && b < grid.Blocks {
				schedule.GeneratorRuns[b] = true
			}
		}
	}
	return schedule
}
