package arrivals_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

func Test_ExpectedAnnualCases(t *testing.T) {
	testCases := []struct {
		name       string
		population float64
		share      float64
		incidence  float64
		expected   float64
	}{
		{"CHO5 2013 male", 381041, 11.7, 140, 62},
		{"CHO5 2013 female", 425799, 11.7, 407, 203},
		{"CHO2 2016 male", 422965, 10.6, 140, 63},
		{"half rounds up", 5, 10, 100000, 1},
		{"below half rounds down", 100, 1, 140, 0},
		{"zero population", 0, 11.7, 140, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			cases := arrivals.ExpectedAnnualCases(tc.population, tc.share, tc.incidence)

			// assert
			assert.Equal(t, tc.expected, cases)
		})
	}
}

func Test_MeanInterarrivalMinutes_CHO5_2013_Male(t *testing.T) {
	// act
	delay, err := arrivals.MeanInterarrivalMinutes(381041, 11.7, 140)

	// assert
	require.NoError(t, err)
	assert.InDelta(t, 525600.0/62, float64(delay), 1e-9)
	assert.InDelta(t, 8477.419354838709, float64(delay), 1e-9)
}

func Test_MeanInterarrivalMinutes_CHO2_2016_Male(t *testing.T) {
	// act
	delay, err := arrivals.MeanInterarrivalMinutes(422965, 10.6, 140)

	// assert
	require.NoError(t, err)
	assert.InDelta(t, 525600.0/63, float64(delay), 1e-9)
}

func Test_MeanInterarrivalMinutes_When_Expected_Cases_Round_To_Zero(t *testing.T) {
	// act
	_, zeroPopulationErr := arrivals.MeanInterarrivalMinutes(0, 11.7, 140)
	_, tinyPopulationErr := arrivals.MeanInterarrivalMinutes(100, 1, 140)

	// assert
	assert.ErrorIs(t, zeroPopulationErr, arrivals.ErrZeroExpectedCases)
	assert.ErrorIs(t, zeroPopulationErr, arrivals.ErrConfiguration)
	assert.ErrorIs(t, tinyPopulationErr, arrivals.ErrZeroExpectedCases)
}

func Test_MeanInterarrivalMinutes_When_Input_Is_Invalid(t *testing.T) {
	for _, input := range [][3]float64{
		{-1, 10, 140},
		{1000, -10, 140},
		{1000, 10, math.NaN()},
		{math.Inf(1), 10, 140},
	} {
		// act
		_, err := arrivals.MeanInterarrivalMinutes(input[0], input[1], input[2])

		// assert
		assert.ErrorIs(t, err, arrivals.ErrInvalidRateInput, "%v", input)
		assert.ErrorIs(t, err, arrivals.ErrConfiguration, "%v", input)
	}
}

func Test_MeanInterarrivalMinutes_Times_Cases_Is_One_Year(t *testing.T) {
	// act
	delay, err := arrivals.MeanInterarrivalMinutes(588297, 12.0, 140)

	// assert
	require.NoError(t, err)
	cases := arrivals.ExpectedAnnualCases(588297, 12.0, 140)
	assert.InDelta(t, float64(arrivals.MinutesPerYear), float64(delay)*cases, 1e-6)
	assert.Equal(t, arrivals.Minutes(525600), arrivals.MinutesPerYear)
}
