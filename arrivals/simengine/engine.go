package simengine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

const (
	logMsgRunStarted  = "simulation run started"
	logMsgRunFinished = "simulation run finished"
	logMsgRunCanceled = "simulation run canceled"
	logMsgRunFailed   = "simulation run failed"
	logMsgActivation  = "activation delivered"
	logAttrStopAt     = "stop_at_minute"
	logAttrNow        = "sim_minute"
	logAttrDelivered  = "activations_delivered"
	logAttrPending    = "activations_pending"
	logAttrActivation = "activation"
	logAttrError      = "error"
)

// TimeResolution is the smallest distinguishable span of simulated time. Activations closer than this
// to the stop bound count as lying on it, so accumulated floating point drift of repeated
// rescheduling never adds an activation at the very end of a run.
const TimeResolution arrivals.Minutes = 1e-6

var (
	// ErrNilActivation is returned when scheduling a nil activation.
	ErrNilActivation = errors.New("activation must not be nil")

	// ErrInvalidTime is returned when a time or delay is NaN or infinite.
	ErrInvalidTime = errors.New("simulated time must be a finite number")

	// ErrScheduleInPast is returned when an initial schedule lies before the current simulated time.
	ErrScheduleInPast = errors.New("activation time lies in the past")

	// ErrNegativeDelay is returned when an activation is rescheduled with a negative delay.
	ErrNegativeDelay = errors.New("activation delay must not be negative")

	// ErrActivationFailed wraps an error returned by an activation; it ends the run.
	ErrActivationFailed = errors.New("activation failed")
)

// RunStats summarizes one RunUntil call.
type RunStats struct {
	Delivered int
	EndedAt   arrivals.Minutes
	Pending   int
}

// Engine is a single-threaded event list implementing arrivals.Scheduler.
type Engine struct {
	now       arrivals.Minutes
	seq       uint64
	delivered int
	queue     activationQueue
	logger    arrivals.Logger
}

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithLogger sets the logger. Debug level logs every delivered activation.
func WithLogger(logger arrivals.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithStartTime sets the simulated time the engine starts at.
func WithStartTime(at arrivals.Minutes) Option {
	return func(e *Engine) error {
		if !finite(at) {
			return ErrInvalidTime
		}

		e.now = at
		return nil
	}
}

// NewEngine creates an engine at simulated time zero with an empty event list.
func NewEngine(options ...Option) (*Engine, error) {
	e := &Engine{}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Now returns the current simulated time.
func (e *Engine) Now() arrivals.Minutes {
	return e.now
}

// Pending returns the number of scheduled activations.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Delivered returns the number of activations delivered so far.
func (e *Engine) Delivered() int {
	return e.delivered
}

// NextAt returns the time of the next scheduled activation.
func (e *Engine) NextAt() (arrivals.Minutes, bool) {
	next, ok := e.queue.peek()
	return next.at, ok
}

// ScheduleInitial implements arrivals.Scheduler.
func (e *Engine) ScheduleInitial(activation arrivals.Activation, at arrivals.Minutes) error {
	if activation == nil {
		return ErrNilActivation
	}

	if !finite(at) {
		return ErrInvalidTime
	}

	if at < e.now {
		return fmt.Errorf("%w: %v < %v", ErrScheduleInPast, at, e.now)
	}

	e.schedule(activation, at)

	return nil
}

// ScheduleActivation implements arrivals.Scheduler.
func (e *Engine) ScheduleActivation(activation arrivals.Activation, delay arrivals.Minutes) error {
	if activation == nil {
		return ErrNilActivation
	}

	if !finite(delay) {
		return ErrInvalidTime
	}

	if delay < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDelay, delay)
	}

	e.schedule(activation, e.now+delay)

	return nil
}

func (e *Engine) schedule(activation arrivals.Activation, at arrivals.Minutes) {
	e.queue.push(scheduledActivation{at: at, seq: e.seq, activation: activation})
	e.seq++
}

// Step delivers the next activation, advancing the clock to its time.
// It returns false when the event list is empty.
func (e *Engine) Step(ctx context.Context) (bool, error) {
	if e.queue.Len() == 0 {
		return false, nil
	}

	next := e.queue.pop()
	e.now = next.at
	e.delivered++

	if e.logger != nil {
		e.logger.Debug(logMsgActivation, logAttrActivation, next.activation.Name(), logAttrNow, float64(e.now))
	}

	if err := next.activation.Activate(ctx, e.now, e); err != nil {
		return true, errors.Join(ErrActivationFailed, fmt.Errorf("%s at %v: %w", next.activation.Name(), e.now, err))
	}

	return true, nil
}

// RunUntil delivers activations in time order while their time is strictly before stopAt
// (see TimeResolution), then advances the clock to stopAt. It stops early on context
// cancellation or on the first activation error.
func (e *Engine) RunUntil(ctx context.Context, stopAt arrivals.Minutes) (RunStats, error) {
	if !finite(stopAt) {
		return RunStats{}, ErrInvalidTime
	}

	deliveredBefore := e.delivered
	e.logInfo(logMsgRunStarted, logAttrStopAt, float64(stopAt), logAttrPending, e.queue.Len())

	for {
		if err := ctx.Err(); err != nil {
			e.logInfo(logMsgRunCanceled, logAttrNow, float64(e.now), logAttrDelivered, e.delivered-deliveredBefore)
			return e.stats(deliveredBefore), err
		}

		next, ok := e.queue.peek()
		if !ok || next.at >= stopAt-TimeResolution {
			break
		}

		if _, err := e.Step(ctx); err != nil {
			if e.logger != nil {
				e.logger.Error(logMsgRunFailed, logAttrError, err.Error(), logAttrNow, float64(e.now))
			}

			return e.stats(deliveredBefore), err
		}
	}

	if stopAt > e.now {
		e.now = stopAt
	}

	stats := e.stats(deliveredBefore)
	e.logInfo(logMsgRunFinished, logAttrNow, float64(e.now), logAttrDelivered, stats.Delivered, logAttrPending, stats.Pending)

	return stats, nil
}

func (e *Engine) stats(deliveredBefore int) RunStats {
	return RunStats{
		Delivered: e.delivered - deliveredBefore,
		EndedAt:   e.now,
		Pending:   e.queue.Len(),
	}
}

func (e *Engine) logInfo(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func finite(m arrivals.Minutes) bool {
	return !math.IsNaN(float64(m)) && !math.IsInf(float64(m), 0)
}

var _ arrivals.Scheduler = (*Engine)(nil)
