package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Plan solver metrics
	PlansSolved       prometheus.Counter
	PlansInfeasible   *prometheus.CounterVec
	PlansTimedOut     prometheus.Counter
	SolveDuration     prometheus.Histogram
	PatientsScheduled prometheus.Histogram
	PlanCost          prometheus.Histogram

	// Broker metrics
	BrokerOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		PlansSolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plans_solved_total",
			Help:      "Total number of successfully solved day plans",
		}),
		PlansInfeasible: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plans_infeasible_total",
			Help:      "Total number of infeasible plan runs by constraint class",
		}, []string{"class"}),
		PlansTimedOut: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plans_timed_out_total",
			Help:      "Total number of plan runs returned with optimality unproven",
		}),
		SolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "solve_duration_seconds",
			Help:      "Time spent in the plan solver",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		PatientsScheduled: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patients_scheduled",
			Help:      "Number of patients placed per solved plan",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		PlanCost: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "plan_cost_czk",
			Help:      "Total procurement cost of solved plans",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}),
		BrokerOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broker_operations_total",
			Help:      "Total number of message broker operations",
		}, []string{"operation", "status"}),
	}
}
