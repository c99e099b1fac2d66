package messaging

import (
	"context"
)

// Channel names used between the API and the plan worker.
const (
	ChannelPlanRequests = "plan.requests"
	ChannelPlanResults  = "plan.results"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// PlanRequest asks the worker to solve a plan for a user's current set.
type PlanRequest struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	SetName   string `json:"set_name"`
	NotifyTo  string `json:"notify_to,omitempty"`
}

// PlanResult carries the outcome back to subscribers.
type PlanResult struct {
	RequestID string      `json:"request_id"`
	UserID    string      `json:"user_id"`
	Status    string      `json:"status"` // solved | infeasible | error
	Schedule  interface{} `json:"schedule,omitempty"`
	Report    interface{} `json:"report,omitempty"`
	Error     string      `json:"error,omitempty"`
}
