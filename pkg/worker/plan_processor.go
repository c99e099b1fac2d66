package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nucmed/petplan/pkg/logger"
	"github.com/nucmed/petplan/pkg/messaging"
)

// PlanSolver is implemented by the plan service. Process solves the request
// and publishes the result itself.
type PlanSolver interface {
	Process(ctx context.Context, req *messaging.PlanRequest) error
}

type PlanProcessorConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// PlanProcessor consumes plan requests from the broker and hands them to the
// solver one at a time. Solves are CPU bound, so requests are processed
// sequentially rather than fanned out.
type PlanProcessor struct {
	broker messaging.Broker
	solver PlanSolver
	config PlanProcessorConfig
	logger *logger.Logger
}

func NewPlanProcessor(broker messaging.Broker, solver PlanSolver, config PlanProcessorConfig, logger *logger.Logger) *PlanProcessor {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	return &PlanProcessor{
		broker: broker,
		solver: solver,
		config: config,
		logger: logger,
	}
}

func (p *PlanProcessor) Start(ctx context.Context) error {
	messages, err := p.broker.Subscribe(ctx, messaging.ChannelPlanRequests)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", messaging.ChannelPlanRequests, err)
	}

	p.logger.Info("Starting plan processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down plan processor")
			return nil
		case payload, ok := <-messages:
			if !ok {
				p.logger.Info("Plan request channel closed")
				return nil
			}
			if err := p.handle(ctx, payload); err != nil {
				p.logger.Error(err, "Failed to process plan request")
			}
		}
	}
}

func (p *PlanProcessor) handle(ctx context.Context, payload []byte) error {
	var req messaging.PlanRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to decode plan request: %w", err)
	}

	p.logger.Info("Processing plan request",
		"request_id", req.RequestID,
		"user_id", req.UserID,
		"set_name", req.SetName)

	return retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.solver.Process(ctx, &req)
	})
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
