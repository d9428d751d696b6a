package statemachine

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalidTransition = "invalid_transition"
	OutcomeGuardFailed       = "guard_failed"
	OutcomePersistenceFailed = "persistence_failed"
	OutcomeNotFound          = "not_found"
	OutcomeLookupFailed      = "lookup_failed"
	OutcomeUnknownTransition = "unknown_transition"
	OutcomeError             = "error"
)

type metrics struct {
	transitions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docstate_transitions_total",
		Help: "Total number of transition attempts by machine, transition, source state, target state and outcome",
	}, []string{"machine", "transition", "from", "to", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docstate_transition_duration_seconds",
		Help:    "Duration of transition attempts including the persistence write",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"machine", "transition", "outcome"})

	var err error
	if transitions, err = register(reg, transitions); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &metrics{transitions: transitions, duration: duration}, nil
}

// register returns the already registered collector when one with the same
// descriptor exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(machine, transition, from, to, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(machine, transition, from, to, outcome).Inc()
	m.duration.WithLabelValues(machine, transition, outcome).Observe(elapsed.Seconds())
}

// outcomeOf maps an engine error to its metric label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case IsInvalidTransitionError(err):
		return OutcomeInvalidTransition
	case IsGuardFailedError(err):
		return OutcomeGuardFailed
	case IsPersistenceFailedError(err):
		return OutcomePersistenceFailed
	case IsLookupFailedError(err):
		return OutcomeLookupFailed
	case IsNotFoundError(err):
		return OutcomeNotFound
	case errors.Is(err, ErrUnknownTransition):
		return OutcomeUnknownTransition
	default:
		return OutcomeError
	}
}
