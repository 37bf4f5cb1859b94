// Package helper provides fixtures and test doubles shared by the tests of this module.
package helper

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/catchment"
)

// GivenUniqueRunID returns a fresh time-ordered run ID.
func GivenUniqueRunID(t testing.TB) uuid.UUID {
	runID, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return runID
}

// GivenRunConfig returns a run configuration with a fresh run ID.
func GivenRunConfig(t testing.TB, year, cho string, seed uint64) arrivals.RunConfig {
	return arrivals.RunConfig{
		Year:      year,
		Catchment: cho,
		Seed:      seed,
		RunID:     GivenUniqueRunID(t),
	}
}

// GivenCatchmentTables selects the embedded tables for one year and catchment.
func GivenCatchmentTables(t testing.TB, year, cho string) arrivals.Tables {
	set, err := catchment.Default()
	require.NoError(t, err, "error in arranging test data")

	tables, err := set.Select(year, cho)
	require.NoError(t, err, "error in arranging test data")

	return tables
}

// FixtureTables returns small hand-made tables whose rates are easy to compute:
// 100 expected male and 200 expected female cases per year.
func FixtureTables() arrivals.Tables {
	return arrivals.Tables{
		Population:   arrivals.Population{Male: 1_000_000, Female: 1_000_000},
		SharePercent: 10,
		Incidence:    arrivals.IncidenceRates{Male: 100, Female: 200},
		Hospitals:    []arrivals.Entry{{Value: 101, Weight: 3}, {Value: 102, Weight: 1}},
		Residences:   []arrivals.Entry{{Value: 2100, Weight: 1}, {Value: 2200, Weight: 1}},
		Ages:         []arrivals.Entry{{Value: 70, Weight: 1}, {Value: 80, Weight: 2}, {Value: 90, Weight: 1}},
		Fragility:    []arrivals.Entry{{Value: 1, Weight: 1}, {Value: 2, Weight: 1}},
		FractureTypes: []arrivals.Entry{
			{Value: 1, Weight: 593},
			{Value: 2, Weight: 171},
			{Value: 3, Weight: 697},
			{Value: 4, Weight: 194},
		},
		Diagnoses: []arrivals.DiagnosisEntry{
			{Code: "S7200", ID: 4, Weight: 612},
			{Code: "S7211", ID: 3, Weight: 529},
			{Code: "S7203", ID: 2, Weight: 210},
		},
	}
}
