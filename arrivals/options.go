package arrivals

import "errors"

// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
var ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

type modelOptions struct {
	observer observer
}

// Option defines a functional option for configuring a Model and its generators.
type Option func(*modelOptions) error

// WithLogger sets the logger.
// The logger will receive messages at different levels:
//
// Debug level: every generated patient (development use)
// Info level: derived rates at initialization, run summaries
// Error level: sampling failures and persistence failures.
func WithLogger(logger Logger) Option {
	return func(o *modelOptions) error {
		o.observer.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, receiving the same messages as WithLogger.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(o *modelOptions) error {
		o.observer.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector, which receives generated/persisted/failed counters,
// store durations and the derived inter-arrival times.
func WithMetrics(collector MetricsCollector) Option {
	return func(o *modelOptions) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		o.observer.metricsCollector = collector
		return nil
	}
}
