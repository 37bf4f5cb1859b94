package arrivals

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DiagnosisEntry maps one diagnosis code to its numeric ID and historical case count.
type DiagnosisEntry struct {
	Code   string  `yaml:"code" json:"code"`
	ID     int     `yaml:"id" json:"id"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// IncidenceRates holds annual case counts per 100,000 elderly population, per sex.
type IncidenceRates struct {
	Male   float64 `yaml:"male" json:"male"`
	Female float64 `yaml:"female" json:"female"`
}

// Population holds the total elderly population of one simulation year, per sex.
type Population struct {
	Male   float64 `yaml:"male" json:"male"`
	Female float64 `yaml:"female" json:"female"`
}

// Tables is the read-only configuration selected for one run: one simulation year and one catchment.
type Tables struct {
	Population    Population
	SharePercent  float64
	Incidence     IncidenceRates
	Hospitals     []Entry
	Residences    []Entry
	Ages          []Entry
	Fragility     []Entry
	FractureTypes []Entry
	Diagnoses     []DiagnosisEntry
}

// RunConfig is the explicit run-wide configuration handed to every component at construction.
type RunConfig struct {
	Year      string
	Catchment string
	Seed      uint64
	RunID     uuid.UUID
}

// Validate checks the static shape of the tables: non-empty frequency tables with a positive
// total weight, attribute domains and unique diagnosis IDs. Arithmetic checks happen when the
// rates are derived.
func (t Tables) Validate() error {
	diagnosisWeight := 0.0
	for _, diagnosis := range t.Diagnoses {
		diagnosisWeight += diagnosis.Weight
	}

	required := []struct {
		name        string
		entries     int
		totalWeight float64
	}{
		{tableHospital, len(t.Hospitals), totalWeight(t.Hospitals)},
		{tableResidence, len(t.Residences), totalWeight(t.Residences)},
		{tableAge, len(t.Ages), totalWeight(t.Ages)},
		{tableFragility, len(t.Fragility), totalWeight(t.Fragility)},
		{tableFractureType, len(t.FractureTypes), totalWeight(t.FractureTypes)},
		{tableDiagnosis, len(t.Diagnoses), diagnosisWeight},
	}

	for _, table := range required {
		if table.entries == 0 {
			return errors.Join(ErrConfiguration, fmt.Errorf("%w: %s", ErrEmptyTable, table.name))
		}

		// NaN fails this comparison too
		if !(table.totalWeight > 0) {
			return errors.Join(ErrConfiguration, fmt.Errorf("%w: %s", ErrZeroTotalWeight, table.name))
		}
	}

	for _, entry := range t.FractureTypes {
		if !FractureType(entry.Value).Valid() {
			return errors.Join(ErrConfiguration, fmt.Errorf("%w: fracture type %d", ErrAttributeOutOfRange, entry.Value))
		}
	}

	for _, entry := range t.Fragility {
		if !FragilityHistory(entry.Value).Valid() {
			return errors.Join(ErrConfiguration, fmt.Errorf("%w: fragility %d", ErrAttributeOutOfRange, entry.Value))
		}
	}

	seen := make(map[int]string, len(t.Diagnoses))
	for _, diagnosis := range t.Diagnoses {
		if other, exists := seen[diagnosis.ID]; exists {
			return errors.Join(
				ErrConfiguration,
				fmt.Errorf("%w: id %d used by %s and %s", ErrDuplicateDiagnosisID, diagnosis.ID, other, diagnosis.Code),
			)
		}
		seen[diagnosis.ID] = diagnosis.Code
	}

	return nil
}

func totalWeight(entries []Entry) float64 {
	total := 0.0
	for _, entry := range entries {
		total += entry.Weight
	}

	return total
}
