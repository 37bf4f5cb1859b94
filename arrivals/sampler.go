package arrivals

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	tableHospital     = "Source Hospital"
	tableResidence    = "Area of Residence"
	tableAge          = "Patient Age"
	tableFragility    = "Fragility History"
	tableFractureType = "Fracture Type"
	tableDiagnosis    = "Diagnosis Type"
)

// PatientAttributeSampler materializes fully-attributed patients from six independent
// empirical distributions configured for one catchment and simulation year.
type PatientAttributeSampler struct {
	run            RunConfig
	hospital       *EmpiricalDistribution
	residence      *EmpiricalDistribution
	age            *EmpiricalDistribution
	fragility      *EmpiricalDistribution
	fractureType   *EmpiricalDistribution
	diagnosis      *EmpiricalDistribution
	diagnosisCodes map[int]string
}

// NewPatientAttributeSampler validates the tables and builds all distributions on the shared rng.
// The diagnosis reverse index (ID -> code) is built once here.
func NewPatientAttributeSampler(run RunConfig, tables Tables, rng *rand.Rand) (*PatientAttributeSampler, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	s := &PatientAttributeSampler{
		run:            run,
		hospital:       NewEmpiricalDistribution(tableHospital, rng),
		residence:      NewEmpiricalDistribution(tableResidence, rng),
		age:            NewEmpiricalDistribution(tableAge, rng),
		fragility:      NewEmpiricalDistribution(tableFragility, rng),
		fractureType:   NewEmpiricalDistribution(tableFractureType, rng),
		diagnosis:      NewEmpiricalDistribution(tableDiagnosis, rng),
		diagnosisCodes: make(map[int]string, len(tables.Diagnoses)),
	}

	setups := []struct {
		distribution *EmpiricalDistribution
		entries      []Entry
	}{
		{s.hospital, tables.Hospitals},
		{s.residence, tables.Residences},
		{s.age, tables.Ages},
		{s.fragility, tables.Fragility},
		{s.fractureType, tables.FractureTypes},
	}

	for _, setup := range setups {
		if err := setup.distribution.AddEntries(setup.entries...); err != nil {
			return nil, fmt.Errorf("%s: %w", setup.distribution.Name(), err)
		}
	}

	for _, diagnosis := range tables.Diagnoses {
		if err := s.diagnosis.AddEntry(diagnosis.ID, diagnosis.Weight); err != nil {
			return nil, fmt.Errorf("%s %s: %w", tableDiagnosis, diagnosis.Code, err)
		}
		s.diagnosisCodes[diagnosis.ID] = diagnosis.Code
	}

	return s, nil
}

// Generate returns a patient of the given sex with every attribute sampled.
// The sampling order is fixed: hospital, residence, age, fragility, fracture type, diagnosis.
func (s *PatientAttributeSampler) Generate(sex Sex) (Patient, error) {
	var values [6]int

	distributions := [6]*EmpiricalDistribution{
		s.hospital,
		s.residence,
		s.age,
		s.fragility,
		s.fractureType,
		s.diagnosis,
	}

	for i, distribution := range distributions {
		value, err := distribution.Sample()
		if err != nil {
			return Patient{}, fmt.Errorf("%s: %w", distribution.Name(), err)
		}
		values[i] = value
	}

	diagnosisCode, err := s.DiagnosisCode(values[5])
	if err != nil {
		return Patient{}, err
	}

	return Patient{
		RunID:         s.run.RunID,
		Catchment:     s.run.Catchment,
		Year:          s.run.Year,
		Sex:           sex,
		HospitalID:    values[0],
		ResidenceID:   values[1],
		Age:           values[2],
		Fragility:     FragilityHistory(values[3]),
		FractureType:  FractureType(values[4]),
		DiagnosisCode: diagnosisCode,
	}, nil
}

// DiagnosisCode resolves a sampled diagnosis ID to its code.
func (s *PatientAttributeSampler) DiagnosisCode(id int) (string, error) {
	code, ok := s.diagnosisCodes[id]
	if !ok {
		return "", errors.Join(ErrDiagnosisLookup, fmt.Errorf("diagnosis id %d", id))
	}

	return code, nil
}
