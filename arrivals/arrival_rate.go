package arrivals

import (
	"errors"
	"math"
)

// Minutes is a point in, or a span of, simulated time measured in minutes.
type Minutes float64

const (
	// MinutesPerYear is the length of a simulated (non-leap) year.
	MinutesPerYear Minutes = 365 * 24 * 60

	// MinutesPerDay is the length of a simulated day.
	MinutesPerDay Minutes = 24 * 60

	incidenceBase = 100000.0
	percentBase   = 100.0
)

// ExpectedAnnualCases returns round(population × sharePercent/100 × incidencePer100k/100000).
// Rounding is half away from zero, which for the non-negative inputs allowed here is half up.
func ExpectedAnnualCases(population, sharePercent, incidencePer100k float64) float64 {
	return math.Round(population * (sharePercent / percentBase) * (incidencePer100k / incidenceBase))
}

// MeanInterarrivalMinutes derives the constant inter-arrival time of one arrival process
// as (365×24×60) / ExpectedAnnualCases.
//
// An expected case count of zero fails with ErrZeroExpectedCases joined with ErrConfiguration:
// an infinite delay is never returned.
func MeanInterarrivalMinutes(population, sharePercent, incidencePer100k float64) (Minutes, error) {
	for _, input := range []float64{population, sharePercent, incidencePer100k} {
		if math.IsNaN(input) || math.IsInf(input, 0) || input < 0 {
			return 0, errors.Join(ErrConfiguration, ErrInvalidRateInput)
		}
	}

	expectedCases := ExpectedAnnualCases(population, sharePercent, incidencePer100k)
	if expectedCases == 0 {
		return 0, errors.Join(ErrConfiguration, ErrZeroExpectedCases)
	}

	return MinutesPerYear / Minutes(expectedCases), nil
}
