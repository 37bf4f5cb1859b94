package arrivals

import (
	"context"
	"time"
)

// Logger interface for operational logging of model initialization, activations and persistence failures.
// It is satisfied by *slog.Logger and by the zerolog adapter in internal/logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging, e.g., with trace correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting generator and persistence metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

const (
	metricPatientsGenerated   = "arrivals_patients_generated_total"
	metricPatientsPersisted   = "arrivals_patients_persisted_total"
	metricPersistenceFailures = "arrivals_persistence_failures_total"
	metricStoreDuration       = "arrivals_store_duration_seconds"
	metricInterarrivalMinutes = "arrivals_mean_interarrival_minutes"
	labelSex                  = "sex"
	labelCatchment            = "catchment"
	labelStatus               = "status"
	statusSuccess             = "success"
	statusError               = "error"
)

// observer bundles the optional observability collaborators so that every component checks for nil in one place.
type observer struct {
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

func (o observer) debug(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

func (o observer) info(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.Info(msg, args...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

func (o observer) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if o.logger != nil {
		o.logger.Error(msg, allArgs...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

func (o observer) incrementCounter(metric string, labels map[string]string) {
	if o.metricsCollector != nil {
		o.metricsCollector.IncrementCounter(metric, labels)
	}
}

func (o observer) recordDuration(metric string, duration time.Duration, labels map[string]string) {
	if o.metricsCollector != nil {
		o.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (o observer) recordValue(metric string, value float64, labels map[string]string) {
	if o.metricsCollector != nil {
		o.metricsCollector.RecordValue(metric, value, labels)
	}
}
