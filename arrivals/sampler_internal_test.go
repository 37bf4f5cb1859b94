package arrivals

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Generate_When_Sampled_Diagnosis_ID_Has_No_Code(t *testing.T) {
	// setup
	tables := Tables{
		Population:    Population{Male: 1000, Female: 1000},
		SharePercent:  100,
		Incidence:     IncidenceRates{Male: 100000, Female: 100000},
		Hospitals:     []Entry{{Value: 1, Weight: 1}},
		Residences:    []Entry{{Value: 2, Weight: 1}},
		Ages:          []Entry{{Value: 80, Weight: 1}},
		Fragility:     []Entry{{Value: 1, Weight: 1}},
		FractureTypes: []Entry{{Value: 1, Weight: 1}},
		Diagnoses:     []DiagnosisEntry{{Code: "S7200", ID: 4, Weight: 1}},
	}
	sampler, err := NewPatientAttributeSampler(RunConfig{Year: "2016", Catchment: "CHO1"}, tables, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	// arrange
	delete(sampler.diagnosisCodes, 4)

	// act
	_, err = sampler.Generate(Male)

	// assert
	assert.ErrorIs(t, err, ErrDiagnosisLookup)
}
