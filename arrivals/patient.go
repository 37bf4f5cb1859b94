package arrivals

import (
	"fmt"

	"github.com/google/uuid"
)

// Sex identifies which of the two arrival processes produced a patient.
// The numeric codes are the ones stored downstream (1 male, 2 female).
type Sex int

const (
	Male   Sex = 1
	Female Sex = 2
)

// String returns the lower-case name of the sex.
func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return fmt.Sprintf("sex(%d)", int(s))
	}
}

// FractureType is the admission fracture type (1-4).
type FractureType int

const (
	IntracapsularDisplaced   FractureType = 1
	IntracapsularUndisplaced FractureType = 2
	Intertrochanteric        FractureType = 3
	Subtrochanteric          FractureType = 4
)

// Valid reports whether the fracture type is one of the four known codes.
func (f FractureType) Valid() bool {
	return f >= IntracapsularDisplaced && f <= Subtrochanteric
}

// FragilityHistory is the admission fragility-history flag (1 yes, 2 no).
type FragilityHistory int

const (
	FragilityYes FragilityHistory = 1
	FragilityNo  FragilityHistory = 2
)

// Valid reports whether the flag is one of the two known codes.
func (f FragilityHistory) Valid() bool {
	return f == FragilityYes || f == FragilityNo
}

// Patient is one generated admission. Every attribute is assigned in the same activation,
// before the patient is handed to the PersistenceSink; a Patient is never stored partially.
type Patient struct {
	RunID         uuid.UUID        `json:"run_id"`
	Catchment     string           `json:"cho"`
	Year          string           `json:"sim_year"`
	Sex           Sex              `json:"sex"`
	HospitalID    int              `json:"hosp_id"`
	ResidenceID   int              `json:"res_id"`
	Age           int              `json:"age"`
	DiagnosisCode string           `json:"diag1"`
	FractureType  FractureType     `json:"adm_fracture_type"`
	Fragility     FragilityHistory `json:"adm_fragility"`
	ArrivalMinute Minutes          `json:"arrival_minute"`
}
