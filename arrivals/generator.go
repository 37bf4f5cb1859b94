package arrivals

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GeneratorState is the state of an ArrivalGenerator in its perpetual two-state cycle.
type GeneratorState int

const (
	// Scheduled means the generator is waiting for its next activation.
	Scheduled GeneratorState = iota

	// Active means the generator is executing one activation.
	Active
)

// String returns the name of the state.
func (s GeneratorState) String() string {
	if s == Active {
		return "active"
	}

	return "scheduled"
}

// GeneratorStats counts what a generator has done so far.
type GeneratorStats struct {
	Activations         int
	Persisted           int
	PersistenceFailures int
}

// ArrivalGenerator is the self-rescheduling arrival process for one sex.
//
// Each activation creates exactly one patient, emits it to the sink exactly once and
// requests exactly one reschedule after the constant inter-arrival delay.
// There is no terminal state: the cycle ends when the runtime stops delivering activations.
type ArrivalGenerator struct {
	name     string
	sex      Sex
	delay    Minutes
	sampler  *PatientAttributeSampler
	sink     PersistenceSink
	observer observer
	labels   map[string]string
	state    GeneratorState
	stats    GeneratorStats
}

// NewArrivalGenerator creates a generator in the Scheduled state.
func NewArrivalGenerator(
	sex Sex,
	delay Minutes,
	sampler *PatientAttributeSampler,
	sink PersistenceSink,
	options ...Option,
) (*ArrivalGenerator, error) {

	if sampler == nil {
		return nil, ErrNilSampler
	}

	if sink == nil {
		return nil, ErrNilSink
	}

	if delay <= 0 {
		return nil, errors.Join(ErrConfiguration, fmt.Errorf("%w: delay %v", ErrInvalidRateInput, delay))
	}

	cfg := modelOptions{}
	for _, option := range options {
		if err := option(&cfg); err != nil {
			return nil, err
		}
	}

	name := fmt.Sprintf("%s patient generator", sex)

	return &ArrivalGenerator{
		name:     name,
		sex:      sex,
		delay:    delay,
		sampler:  sampler,
		sink:     sink,
		observer: cfg.observer,
		labels:   map[string]string{labelSex: sex.String(), labelCatchment: sampler.run.Catchment},
		state:    Scheduled,
	}, nil
}

// Name returns a descriptive name, e.g., "male patient generator".
func (g *ArrivalGenerator) Name() string {
	return g.name
}

// Sex returns the sex of the patients this generator produces.
func (g *ArrivalGenerator) Sex() Sex {
	return g.sex
}

// Delay returns the constant inter-arrival time.
func (g *ArrivalGenerator) Delay() Minutes {
	return g.delay
}

// State returns the current state.
func (g *ArrivalGenerator) State() GeneratorState {
	return g.state
}

// Stats returns a copy of the counters.
func (g *ArrivalGenerator) Stats() GeneratorStats {
	return g.stats
}

// Activate runs one activation at simulated time now.
//
// Sampling failures abort the run and are returned. Persistence failures are logged and counted,
// then the generator reschedules itself as usual; such a patient record is lost.
func (g *ArrivalGenerator) Activate(ctx context.Context, now Minutes, scheduler Scheduler) error {
	if scheduler == nil {
		return ErrNilScheduler
	}

	g.state = Active
	defer func() { g.state = Scheduled }()

	g.stats.Activations++

	patient, err := g.sampler.Generate(g.sex)
	if err != nil {
		g.observer.logError(ctx, logMsgGenerateFailed, err, logAttrSex, g.sex.String(), logAttrNow, float64(now))
		return err
	}
	patient.ArrivalMinute = now

	g.observer.incrementCounter(metricPatientsGenerated, g.labels)
	g.observer.debug(
		ctx,
		logMsgPatientGenerated,
		logAttrSex, g.sex.String(),
		logAttrNow, float64(now),
		logAttrHospital, patient.HospitalID,
		logAttrAge, patient.Age,
		logAttrDiagnosis, patient.DiagnosisCode,
	)

	g.store(ctx, patient)

	if err := scheduler.ScheduleActivation(g, g.delay); err != nil {
		return fmt.Errorf("%s: reschedule: %w", g.name, err)
	}

	return nil
}

// store hands the patient to the sink once. A failure never propagates to the scheduler.
func (g *ArrivalGenerator) store(ctx context.Context, patient Patient) {
	start := time.Now()
	err := g.sink.Store(ctx, patient)
	duration := time.Since(start)

	if err != nil {
		g.stats.PersistenceFailures++
		g.observer.logError(ctx, logMsgStoreFailed, errors.Join(ErrPersistence, err), logAttrSex, g.sex.String())
		g.observer.incrementCounter(metricPersistenceFailures, g.labels)
		g.observer.recordDuration(metricStoreDuration, duration, g.withStatus(statusError))

		return
	}

	g.stats.Persisted++
	g.observer.incrementCounter(metricPatientsPersisted, g.labels)
	g.observer.recordDuration(metricStoreDuration, duration, g.withStatus(statusSuccess))
}

func (g *ArrivalGenerator) withStatus(status string) map[string]string {
	labels := make(map[string]string, len(g.labels)+1)
	for k, v := range g.labels {
		labels[k] = v
	}
	labels[labelStatus] = status

	return labels
}
