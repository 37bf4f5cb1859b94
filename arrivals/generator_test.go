package arrivals_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/testutil/helper"
)

func givenGenerator(t *testing.T, sex arrivals.Sex, delay arrivals.Minutes, sink arrivals.PersistenceSink, options ...arrivals.Option) *arrivals.ArrivalGenerator {
	sampler, err := arrivals.NewPatientAttributeSampler(helper.GivenRunConfig(t, "2016", "CHO1", 1), helper.FixtureTables(), newRNG(1))
	require.NoError(t, err, "error in arranging test data")

	generator, err := arrivals.NewArrivalGenerator(sex, delay, sampler, sink, options...)
	require.NoError(t, err, "error in arranging test data")

	return generator
}

func Test_Activate_Stores_One_Patient_And_Reschedules_Once(t *testing.T) {
	// setup
	sink := helper.NewRecordingSink()
	scheduler := helper.NewRecordingScheduler()
	generator := givenGenerator(t, arrivals.Male, 5256, sink)

	// act
	err := generator.Activate(context.Background(), 10512, scheduler)

	// assert
	require.NoError(t, err)
	require.Equal(t, 1, sink.Count())
	assert.Equal(t, arrivals.Male, sink.Patients()[0].Sex)
	assert.Equal(t, arrivals.Minutes(10512), sink.Patients()[0].ArrivalMinute)

	require.Len(t, scheduler.Requests, 1)
	assert.Same(t, generator, scheduler.Requests[0].Activation)
	assert.False(t, scheduler.Requests[0].Initial)
	assert.Equal(t, arrivals.Minutes(5256), scheduler.Requests[0].Minutes)

	assert.Equal(t, arrivals.Scheduled, generator.State())
	assert.Equal(t, arrivals.GeneratorStats{Activations: 1, Persisted: 1}, generator.Stats())
}

func Test_Activate_K_Times_Yields_K_Patients_And_K_Reschedules(t *testing.T) {
	// setup
	const k = 25
	sink := helper.NewRecordingSink()
	scheduler := helper.NewRecordingScheduler()
	generator := givenGenerator(t, arrivals.Female, 100, sink)

	// act
	for i := 0; i < k; i++ {
		require.NoError(t, generator.Activate(context.Background(), arrivals.Minutes(i)*100, scheduler))
	}

	// assert
	assert.Equal(t, k, sink.CountBySex(arrivals.Female))
	assert.Len(t, scheduler.Requests, k)
	assert.Equal(t, k, generator.Stats().Activations)
}

func Test_Activate_When_Sink_Fails_Still_Reschedules(t *testing.T) {
	// setup
	sink := helper.NewFailingSink(1)
	scheduler := helper.NewRecordingScheduler()
	logHandler := helper.NewLogHandlerSpy(false)
	metrics := helper.NewMetricsCollectorSpy()
	generator := givenGenerator(t, arrivals.Male, 5256, sink,
		arrivals.WithLogger(slog.New(logHandler)),
		arrivals.WithMetrics(metrics),
	)

	// act
	err := generator.Activate(context.Background(), 0, scheduler)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, sink.Calls())
	assert.Equal(t, 0, sink.Count())
	require.Len(t, scheduler.Requests, 1)
	assert.Equal(t, arrivals.Minutes(5256), scheduler.Requests[0].Minutes)
	assert.Equal(t, arrivals.GeneratorStats{Activations: 1, PersistenceFailures: 1}, generator.Stats())

	assert.True(t, logHandler.HasErrorLogWithMessage("storing patient failed, continuing").
		WithStringAttribute("sex", "male").
		WithAttribute("error").
		Assert())
	assert.Equal(t, 1, metrics.CountCounterRecords("arrivals_persistence_failures_total", map[string]string{"sex": "male"}))
	assert.True(t, metrics.HasDurationRecordWithLabels("arrivals_store_duration_seconds", map[string]string{"status": "error"}))
}

func Test_Activate_Stores_Each_Patient_Exactly_Once_Between_Failures(t *testing.T) {
	// setup
	sink := helper.NewFailingSink(3)
	scheduler := helper.NewRecordingScheduler()
	generator := givenGenerator(t, arrivals.Female, 10, sink)

	// act
	for i := 0; i < 9; i++ {
		require.NoError(t, generator.Activate(context.Background(), arrivals.Minutes(i)*10, scheduler))
	}

	// assert
	assert.Equal(t, 9, sink.Calls())
	assert.Equal(t, 6, sink.Count())
	assert.Len(t, scheduler.Requests, 9)
	assert.Equal(t, arrivals.GeneratorStats{Activations: 9, Persisted: 6, PersistenceFailures: 3}, generator.Stats())
}

func Test_Activate_Records_Metrics_And_Debug_Logs(t *testing.T) {
	// setup
	logHandler := helper.NewLogHandlerSpy(false)
	metrics := helper.NewMetricsCollectorSpy()
	generator := givenGenerator(t, arrivals.Female, 10, helper.NewRecordingSink(),
		arrivals.WithLogger(slog.New(logHandler)),
		arrivals.WithMetrics(metrics),
	)

	// act
	require.NoError(t, generator.Activate(context.Background(), 0, helper.NewRecordingScheduler()))

	// assert
	assert.True(t, logHandler.HasDebugLogWithMessage("patient generated").
		WithStringAttribute("sex", "female").
		WithAttribute("hospital_id").
		WithAttribute("diagnosis").
		Assert())
	assert.Equal(t, 1, metrics.CountCounterRecords("arrivals_patients_generated_total", map[string]string{"sex": "female", "catchment": "CHO1"}))
	assert.Equal(t, 1, metrics.CountCounterRecords("arrivals_patients_persisted_total", nil))
	assert.True(t, metrics.HasDurationRecordWithLabels("arrivals_store_duration_seconds", map[string]string{"status": "success"}))
}

type stateProbeSink struct {
	generator *arrivals.ArrivalGenerator
	seen      []arrivals.GeneratorState
}

func (s *stateProbeSink) Store(_ context.Context, _ arrivals.Patient) error {
	s.seen = append(s.seen, s.generator.State())
	return nil
}

func Test_Activate_Is_Active_While_Running(t *testing.T) {
	// setup
	probe := &stateProbeSink{}
	generator := givenGenerator(t, arrivals.Male, 10, probe)
	probe.generator = generator

	// act
	err := generator.Activate(context.Background(), 0, helper.NewRecordingScheduler())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []arrivals.GeneratorState{arrivals.Active}, probe.seen)
	assert.Equal(t, arrivals.Scheduled, generator.State())
	assert.Equal(t, "active", arrivals.Active.String())
	assert.Equal(t, "scheduled", arrivals.Scheduled.String())
}

func Test_Activate_When_Scheduler_Rejects_The_Reschedule(t *testing.T) {
	// setup
	scheduler := helper.NewRecordingScheduler()
	scheduler.Err = errors.New("event list closed")
	generator := givenGenerator(t, arrivals.Male, 10, helper.NewRecordingSink())

	// act
	err := generator.Activate(context.Background(), 0, scheduler)

	// assert
	assert.ErrorIs(t, err, scheduler.Err)
	assert.Equal(t, arrivals.Scheduled, generator.State())
}

func Test_Activate_When_Scheduler_Is_Nil(t *testing.T) {
	// setup
	sink := helper.NewRecordingSink()
	generator := givenGenerator(t, arrivals.Male, 10, sink)

	// act
	err := generator.Activate(context.Background(), 0, nil)

	// assert
	assert.ErrorIs(t, err, arrivals.ErrNilScheduler)
	assert.Zero(t, sink.Count())
}

func Test_NewArrivalGenerator_When_Arguments_Are_Invalid(t *testing.T) {
	// setup
	sampler, err := arrivals.NewPatientAttributeSampler(helper.GivenRunConfig(t, "2016", "CHO1", 1), helper.FixtureTables(), newRNG(1))
	require.NoError(t, err)

	// act
	_, nilSamplerErr := arrivals.NewArrivalGenerator(arrivals.Male, 10, nil, helper.NewRecordingSink())
	_, nilSinkErr := arrivals.NewArrivalGenerator(arrivals.Male, 10, sampler, nil)
	_, zeroDelayErr := arrivals.NewArrivalGenerator(arrivals.Male, 0, sampler, helper.NewRecordingSink())
	_, nilMetricsErr := arrivals.NewArrivalGenerator(arrivals.Male, 10, sampler, helper.NewRecordingSink(), arrivals.WithMetrics(nil))

	// assert
	assert.ErrorIs(t, nilSamplerErr, arrivals.ErrNilSampler)
	assert.ErrorIs(t, nilSinkErr, arrivals.ErrNilSink)
	assert.ErrorIs(t, zeroDelayErr, arrivals.ErrConfiguration)
	assert.ErrorIs(t, nilMetricsErr, arrivals.ErrNilMetricsCollector)
}

func Test_Generator_Name(t *testing.T) {
	// setup
	generator := givenGenerator(t, arrivals.Female, 10, helper.NewRecordingSink())

	// act + assert
	assert.Equal(t, "female patient generator", generator.Name())
	assert.Equal(t, arrivals.Female, generator.Sex())
	assert.Equal(t, arrivals.Minutes(10), generator.Delay())
}
