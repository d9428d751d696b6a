package statemachine

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Machine during construction.
type Option func(*settings)

type settings struct {
	name       string
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// WithName sets the machine name used in logs and metric labels.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics registers transition counters and latency histograms with reg.
// Several machines may share one registerer; collectors are reused.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = reg
	}
}
