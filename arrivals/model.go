package arrivals

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	modelDescription = "Patient arrival model of hip fracture care"

	pcgStreamSalt = 0x9e3779b97f4a7c15

	logMsgRateDerived      = "arrival rate derived"
	logMsgModelInitialized = "model initialized"
	logMsgPatientGenerated = "patient generated"
	logMsgGenerateFailed   = "generating patient failed"
	logMsgStoreFailed      = "storing patient failed, continuing"
	logAttrError           = "error"
	logAttrSex             = "sex"
	logAttrNow             = "sim_minute"
	logAttrHospital        = "hospital_id"
	logAttrAge             = "age"
	logAttrDiagnosis       = "diagnosis"
	logAttrCatchment       = "catchment"
	logAttrYear            = "year"
	logAttrRunID           = "run_id"
	logAttrSeed            = "seed"
	logAttrExpectedCases   = "expected_annual_cases"
	logAttrInterarrival    = "mean_interarrival_minutes"
)

var (
	// ErrMissingYear is returned when the run configuration has no simulation year.
	ErrMissingYear = errors.New("simulation year must not be empty")

	// ErrMissingCatchment is returned when the run configuration has no catchment.
	ErrMissingCatchment = errors.New("catchment must not be empty")
)

// SexReport summarizes one arrival process.
type SexReport struct {
	Sex                 Sex
	ExpectedAnnualCases float64
	MeanInterarrival    Minutes
	GeneratorStats
}

// Report summarizes a model run.
type Report struct {
	RunConfig
	Male   SexReport
	Female SexReport
}

// Generated returns the number of patients generated by both processes.
func (r Report) Generated() int {
	return r.Male.Activations + r.Female.Activations
}

// Model owns everything built once at initialization for one catchment and year:
// the shared random source, the attribute sampler and one ArrivalGenerator per sex.
type Model struct {
	run      RunConfig
	tables   Tables
	sampler  *PatientAttributeSampler
	male     *ArrivalGenerator
	female   *ArrivalGenerator
	observer observer
}

// NewModel validates the configuration, derives both constant arrival rates and builds the generators.
// Every configuration problem, including a zero expected case count, is reported here and not at
// the first activation.
func NewModel(run RunConfig, tables Tables, sink PersistenceSink, options ...Option) (*Model, error) {
	if run.Year == "" {
		return nil, errors.Join(ErrConfiguration, ErrMissingYear)
	}

	if run.Catchment == "" {
		return nil, errors.Join(ErrConfiguration, ErrMissingCatchment)
	}

	if sink == nil {
		return nil, ErrNilSink
	}

	cfg := modelOptions{}
	for _, option := range options {
		if err := option(&cfg); err != nil {
			return nil, err
		}
	}

	m := &Model{
		run:      run,
		tables:   tables,
		observer: cfg.observer,
	}

	maleDelay, err := m.deriveRate(Male, tables.Population.Male, tables.Incidence.Male)
	if err != nil {
		return nil, err
	}

	femaleDelay, err := m.deriveRate(Female, tables.Population.Female, tables.Incidence.Female)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(run.Seed, run.Seed^pcgStreamSalt))

	m.sampler, err = NewPatientAttributeSampler(run, tables, rng)
	if err != nil {
		return nil, err
	}

	if m.male, err = NewArrivalGenerator(Male, maleDelay, m.sampler, sink, options...); err != nil {
		return nil, err
	}

	if m.female, err = NewArrivalGenerator(Female, femaleDelay, m.sampler, sink, options...); err != nil {
		return nil, err
	}

	m.observer.info(
		context.Background(),
		logMsgModelInitialized,
		logAttrCatchment, run.Catchment,
		logAttrYear, run.Year,
		logAttrRunID, run.RunID.String(),
		logAttrSeed, run.Seed,
	)

	return m, nil
}

func (m *Model) deriveRate(sex Sex, population, incidence float64) (Minutes, error) {
	delay, err := MeanInterarrivalMinutes(population, m.tables.SharePercent, incidence)
	if err != nil {
		return 0, fmt.Errorf("%s arrivals for %s/%s: %w", sex, m.run.Catchment, m.run.Year, err)
	}

	m.observer.info(
		context.Background(),
		logMsgRateDerived,
		logAttrSex, sex.String(),
		logAttrExpectedCases, ExpectedAnnualCases(population, m.tables.SharePercent, incidence),
		logAttrInterarrival, float64(delay),
	)
	m.observer.recordValue(metricInterarrivalMinutes, float64(delay), map[string]string{
		labelSex:       sex.String(),
		labelCatchment: m.run.Catchment,
	})

	return delay, nil
}

// Description returns a one-line description of the model.
func (m *Model) Description() string {
	return modelDescription
}

// RunConfig returns the configuration the model was built with.
func (m *Model) RunConfig() RunConfig {
	return m.run
}

// Sampler returns the attribute sampler shared by both generators.
func (m *Model) Sampler() *PatientAttributeSampler {
	return m.sampler
}

// Generator returns the generator for sex, or nil for an unknown sex.
func (m *Model) Generator(sex Sex) *ArrivalGenerator {
	switch sex {
	case Male:
		return m.male
	case Female:
		return m.female
	default:
		return nil
	}
}

// Generators returns both generators, male first.
func (m *Model) Generators() []*ArrivalGenerator {
	return []*ArrivalGenerator{m.male, m.female}
}

// DoInitialSchedules seeds both generators at simulated time zero, male first.
func (m *Model) DoInitialSchedules(scheduler Scheduler) error {
	if scheduler == nil {
		return ErrNilScheduler
	}

	for _, generator := range m.Generators() {
		if err := scheduler.ScheduleInitial(generator, 0); err != nil {
			return fmt.Errorf("%s: initial schedule: %w", generator.Name(), err)
		}
	}

	return nil
}

// Report returns the derived rates and the counters of both generators.
func (m *Model) Report() Report {
	return Report{
		RunConfig: m.run,
		Male:      m.sexReport(m.male, m.tables.Population.Male, m.tables.Incidence.Male),
		Female:    m.sexReport(m.female, m.tables.Population.Female, m.tables.Incidence.Female),
	}
}

func (m *Model) sexReport(g *ArrivalGenerator, population, incidence float64) SexReport {
	return SexReport{
		Sex:                 g.Sex(),
		ExpectedAnnualCases: ExpectedAnnualCases(population, m.tables.SharePercent, incidence),
		MeanInterarrival:    g.Delay(),
		GeneratorStats:      g.Stats(),
	}
}
