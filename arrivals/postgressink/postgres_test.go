package postgressink_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/simengine"
	"github.com/AntonStoeckl/hipfracture-arrivals/testutil/helper"
	"github.com/AntonStoeckl/hipfracture-arrivals/testutil/helper/postgreswrapper"
)

func Test_Store_Inserts_One_Row_Per_Patient(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	sink := wrapper.GetSink()
	ctx := context.Background()
	runID := helper.GivenUniqueRunID(t)

	// act
	for i := 0; i < 3; i++ {
		err := sink.Store(ctx, arrivals.Patient{
			RunID:         runID,
			Catchment:     "CHO2",
			Year:          "2016",
			Sex:           arrivals.Male,
			HospitalID:    802,
			ResidenceID:   2100,
			Age:           81,
			DiagnosisCode: "S7200",
			FractureType:  arrivals.IntracapsularDisplaced,
			Fragility:     arrivals.FragilityYes,
			ArrivalMinute: arrivals.Minutes(i) * 100,
		})
		require.NoError(t, err)
	}

	// assert
	count, err := sink.CountRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func Test_Store_Same_Patient_Twice_Writes_Two_Rows(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	sink := wrapper.GetSink()
	ctx := context.Background()
	patient := arrivals.Patient{
		RunID:         helper.GivenUniqueRunID(t),
		Catchment:     "CHO6",
		Year:          "2020",
		Sex:           arrivals.Female,
		HospitalID:    910,
		ResidenceID:   200,
		Age:           88,
		DiagnosisCode: "S7211",
		FractureType:  arrivals.Intertrochanteric,
		Fragility:     arrivals.FragilityNo,
	}

	// act
	require.NoError(t, sink.Store(ctx, patient))
	require.NoError(t, sink.Store(ctx, patient))

	// assert
	count, err := sink.CountRun(ctx, patient.RunID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func Test_Simulated_Week_Persists_Every_Generated_Patient(t *testing.T) {
	// setup
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	sink := wrapper.GetSink()
	ctx := context.Background()
	run := helper.GivenRunConfig(t, "2016", "CHO4", 7)

	model, err := arrivals.NewModel(run, helper.GivenCatchmentTables(t, "2016", "CHO4"), sink)
	require.NoError(t, err)
	engine, err := simengine.NewEngine()
	require.NoError(t, err)
	require.NoError(t, model.DoInitialSchedules(engine))

	// act
	stats, err := engine.RunUntil(ctx, 7*arrivals.MinutesPerDay)

	// assert
	require.NoError(t, err)
	report := model.Report()
	assert.Equal(t, stats.Delivered, report.Generated())
	assert.Zero(t, report.Male.PersistenceFailures+report.Female.PersistenceFailures)

	count, err := sink.CountRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, int64(report.Generated()), count)
}
