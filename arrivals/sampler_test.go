package arrivals_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/testutil/helper"
)

func entryValues(entries []arrivals.Entry) []int {
	values := make([]int, 0, len(entries))
	for _, entry := range entries {
		values = append(values, entry.Value)
	}

	return values
}

func Test_Generate_Samples_Every_Attribute_From_Its_Table(t *testing.T) {
	// setup
	tables := helper.FixtureTables()
	run := helper.GivenRunConfig(t, "2016", "CHO1", 1)
	sampler, err := arrivals.NewPatientAttributeSampler(run, tables, newRNG(1))
	require.NoError(t, err)

	for i := 0; i < 2000; i++ {
		// act
		patient, generateErr := sampler.Generate(arrivals.Female)

		// assert
		require.NoError(t, generateErr)
		require.Equal(t, arrivals.Female, patient.Sex)
		require.Equal(t, run.RunID, patient.RunID)
		require.Equal(t, "CHO1", patient.Catchment)
		require.Equal(t, "2016", patient.Year)
		require.Contains(t, entryValues(tables.Hospitals), patient.HospitalID)
		require.Contains(t, entryValues(tables.Residences), patient.ResidenceID)
		require.Contains(t, entryValues(tables.Ages), patient.Age)
		require.True(t, patient.Fragility.Valid())
		require.True(t, patient.FractureType.Valid())
		require.Contains(t, []string{"S7200", "S7211", "S7203"}, patient.DiagnosisCode)
		require.Zero(t, patient.ArrivalMinute)
	}
}

func Test_Generate_Follows_The_Table_Weights(t *testing.T) {
	// setup
	const draws = 20000
	sampler, err := arrivals.NewPatientAttributeSampler(helper.GivenRunConfig(t, "2016", "CHO1", 9), helper.FixtureTables(), newRNG(9))
	require.NoError(t, err)

	// act
	hospital101 := 0
	for i := 0; i < draws; i++ {
		patient, generateErr := sampler.Generate(arrivals.Male)
		require.NoError(t, generateErr)
		if patient.HospitalID == 101 {
			hospital101++
		}
	}

	// assert
	assert.InDelta(t, 0.75, float64(hospital101)/draws, 0.02)
}

func Test_Generate_Sample_Stream_Is_Reproducible(t *testing.T) {
	// setup
	run := helper.GivenRunConfig(t, "2013", "CHO5", 2013)
	tables := helper.GivenCatchmentTables(t, "2013", "CHO5")
	first, err := arrivals.NewPatientAttributeSampler(run, tables, newRNG(2013))
	require.NoError(t, err)
	second, err := arrivals.NewPatientAttributeSampler(run, tables, newRNG(2013))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		// act
		a, errA := first.Generate(arrivals.Male)
		b, errB := second.Generate(arrivals.Male)

		// assert
		require.NoError(t, errA)
		require.NoError(t, errB)
		require.Equal(t, a, b)
	}
}

func Test_DiagnosisCode_Resolves_Configured_IDs(t *testing.T) {
	// setup
	sampler, err := arrivals.NewPatientAttributeSampler(
		helper.GivenRunConfig(t, "2016", "CHO2", 1),
		helper.GivenCatchmentTables(t, "2016", "CHO2"),
		newRNG(1),
	)
	require.NoError(t, err)

	// act
	code, lookupErr := sampler.DiagnosisCode(62)
	_, unknownErr := sampler.DiagnosisCode(63)

	// assert
	require.NoError(t, lookupErr)
	assert.Equal(t, "I48", code)
	assert.ErrorIs(t, unknownErr, arrivals.ErrDiagnosisLookup)
}

func Test_NewPatientAttributeSampler_When_Tables_Are_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(tables *arrivals.Tables)
		expected error
	}{
		{
			name:     "empty hospital table",
			mutate:   func(tables *arrivals.Tables) { tables.Hospitals = nil },
			expected: arrivals.ErrEmptyTable,
		},
		{
			name:     "empty diagnosis table",
			mutate:   func(tables *arrivals.Tables) { tables.Diagnoses = nil },
			expected: arrivals.ErrEmptyTable,
		},
		{
			name: "duplicate diagnosis id",
			mutate: func(tables *arrivals.Tables) {
				tables.Diagnoses = append(tables.Diagnoses, arrivals.DiagnosisEntry{Code: "S729", ID: 4, Weight: 13})
			},
			expected: arrivals.ErrDuplicateDiagnosisID,
		},
		{
			name:     "fracture type out of range",
			mutate:   func(tables *arrivals.Tables) { tables.FractureTypes[0].Value = 0 },
			expected: arrivals.ErrAttributeOutOfRange,
		},
		{
			name:     "fragility out of range",
			mutate:   func(tables *arrivals.Tables) { tables.Fragility[1].Value = 3 },
			expected: arrivals.ErrAttributeOutOfRange,
		},
		{
			name:     "negative age weight",
			mutate:   func(tables *arrivals.Tables) { tables.Ages[0].Weight = -10 },
			expected: arrivals.ErrNegativeWeight,
		},
		{
			name:     "negative diagnosis weight",
			mutate:   func(tables *arrivals.Tables) { tables.Diagnoses[0].Weight = -1 },
			expected: arrivals.ErrNegativeWeight,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			tables := helper.FixtureTables()
			tc.mutate(&tables)

			// act
			_, err := arrivals.NewPatientAttributeSampler(helper.GivenRunConfig(t, "2016", "CHO1", 1), tables, newRNG(1))

			// assert
			assert.ErrorIs(t, err, tc.expected)
			assert.ErrorIs(t, err, arrivals.ErrConfiguration)
		})
	}
}
