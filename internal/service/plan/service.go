// Package plan orchestrates day-plan runs: it snapshots the caller's catalog,
// runs the solver under a timeout, records metrics and publishes the outcome
// for asynchronous consumers.
package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nucmed/petplan/internal/model"
	"github.com/nucmed/petplan/internal/optimizer"
	"github.com/nucmed/petplan/internal/optimizer/timeline"
	"github.com/nucmed/petplan/pkg/logger"
	"github.com/nucmed/petplan/pkg/messaging"
	"github.com/nucmed/petplan/pkg/metrics"
)

// Snapshotter resolves a user's catalog into a solver input.
type Snapshotter interface {
	Snapshot(ctx context.Context, userID, setName string) (*model.CatalogSnapshot, error)
}

// Notifier sends the plan-ready notification. Implementations may be no-ops.
type Notifier interface {
	SendPlanReady(to string, schedule *model.Schedule) error
}

type Config struct {
	Grid                    timeline.Grid
	SolveTimeout            time.Duration
	GeneratorCooldownBlocks int
	GeneratorRunCostCZK     float64
}

type Service struct {
	catalog  Snapshotter
	solver   *optimizer.Solver
	broker   messaging.Broker
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *logger.Logger
	timeout  time.Duration
}

func NewService(catalog Snapshotter, cfg Config, broker messaging.Broker, notifier Notifier, m *metrics.Metrics, log *logger.Logger) *Service {
	solver := optimizer.New(optimizer.Options{
		Grid:                    cfg.Grid,
		GeneratorCooldownBlocks: cfg.GeneratorCooldownBlocks,
		GeneratorRunCostCZK:     cfg.GeneratorRunCostCZK,
	}, log)

	timeout := cfg.SolveTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		catalog:  catalog,
		solver:   solver,
		broker:   broker,
		notifier: notifier,
		metrics:  m,
		logger:   log,
		timeout:  timeout,
	}
}

// Solve runs a plan synchronously for the user's set. The infeasibility
// report is non-nil exactly when the error is Infeasible or
// InsufficientInventory.
func (s *Service) Solve(ctx context.Context, userID, setName string) (*model.Schedule, *model.InfeasibilityReport, error) {
	snap, err := s.catalog.Snapshot(ctx, userID, setName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build catalog snapshot: %w", err)
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	schedule, report, err := s.solver.Solve(solveCtx, snap)
	s.observe(schedule, report, time.Since(started))

	return schedule, report, err
}

func (s *Service) observe(schedule *model.Schedule, report *model.InfeasibilityReport, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.SolveDuration.Observe(elapsed.Seconds())
	switch {
	case schedule != nil:
		s.metrics.PlansSolved.Inc()
		s.metrics.PatientsScheduled.Observe(float64(len(schedule.Patients)))
		s.metrics.PlanCost.Observe(schedule.TotalCost)
		if !schedule.OptimalityProven {
			s.metrics.PlansTimedOut.Inc()
		}
	case report != nil:
		s.metrics.PlansInfeasible.WithLabelValues(string(report.Class)).Inc()
	}
}

// SubmitAsync queues a plan request for the worker and returns its id.
func (s *Service) SubmitAsync(ctx context.Context, userID, setName, notifyTo string) (string, error) {
	req := messaging.PlanRequest{
		RequestID: uuid.NewString(),
		UserID:    userID,
		SetName:   setName,
		NotifyTo:  notifyTo,
	}
	if err := s.broker.Publish(ctx, messaging.ChannelPlanRequests, req); err != nil {
		if s.metrics != nil {
			s.metrics.BrokerOperations.WithLabelValues("publish", "error").Inc()
		}
		return "", fmt.Errorf("failed to queue plan request: %w", err)
	}
	if s.metrics != nil {
		s.metrics.BrokerOperations.WithLabelValues("publish", "ok").Inc()
	}
	return req.RequestID, nil
}

// Process handles one queued request end to end: solve, publish the result,
// notify. It is the worker-side entry point.
func (s *Service) Process(ctx context.Context, req *messaging.PlanRequest) error {
	schedule, report, err := s.Solve(ctx, req.UserID, req.SetName)

	result := messaging.PlanResult{
		RequestID: req.RequestID,
		UserID:    req.UserID,
	}
	switch {
	case schedule != nil:
		result.Status = "solved"
		result.Schedule = schedule
	case report != nil:
		result.Status = "infeasible"
		result.Report = report
	default:
		result.Status = "error"
		if err != nil {
			result.Error = err.Error()
		}
	}

	if pubErr := s.broker.Publish(ctx, messaging.ChannelPlanResults, result); pubErr != nil {
		return fmt.Errorf("failed to publish plan result: %w", pubErr)
	}

	if schedule != nil && req.NotifyTo != "" && s.notifier != nil {
		if mailErr := s.notifier.SendPlanReady(req.NotifyTo, schedule); mailErr != nil {
			// notification is best effort; the result is already published
			s.logger.Error(mailErr, "failed to send plan-ready notification")
		}
	}
	return nil
}
