package postgressink

import (
	"errors"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

var (
	// ErrEmptyTableName is returned when an empty table name is provided.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrNilMetricsCollector is returned when a nil metrics collector is provided.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")
)

// Option defines a functional option for configuring Sink.
type Option func(*Sink) error

// WithTableName sets the table name, the default is "los_predictions".
func WithTableName(tableName string) Option {
	return func(s *Sink) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Sink.
//
// Debug level: SQL statements with execution timing (development use)
// Info level: table bootstrap
// Error level: failed statements.
func WithLogger(logger arrivals.Logger) Option {
	return func(s *Sink) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Sink.
func WithMetrics(collector arrivals.MetricsCollector) Option {
	return func(s *Sink) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		s.metricsCollector = collector

		return nil
	}
}
