package arrivals

import "errors"

var (
	// ErrConfiguration marks malformed or missing table entries. It is fatal at initialization.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNegativeWeight is returned when an empirical entry is added with a negative weight.
	ErrNegativeWeight = errors.New("entry weight must not be negative")

	// ErrInvalidWeight is returned when an empirical entry weight is NaN or infinite.
	ErrInvalidWeight = errors.New("entry weight must be a finite number")

	// ErrEmptyDistribution is returned when sampling a distribution without entries or without positive weight.
	ErrEmptyDistribution = errors.New("distribution has no entries to sample from")

	// ErrZeroExpectedCases is returned when the expected annual case count rounds to zero.
	ErrZeroExpectedCases = errors.New("expected annual case count is zero")

	// ErrInvalidRateInput is returned when population, share or incidence is negative or not a number.
	ErrInvalidRateInput = errors.New("arrival rate input must be a non-negative finite number")

	// ErrDiagnosisLookup is returned when a sampled diagnosis ID has no code in the diagnosis table.
	ErrDiagnosisLookup = errors.New("sampled diagnosis id has no diagnosis code")

	// ErrDuplicateDiagnosisID is returned when two diagnosis codes share the same numeric ID.
	ErrDuplicateDiagnosisID = errors.New("diagnosis id is used by more than one code")

	// ErrAttributeOutOfRange is returned when a table contains a fracture type or fragility flag outside its domain.
	ErrAttributeOutOfRange = errors.New("attribute value is out of range")

	// ErrEmptyTable is returned when a required frequency table has no entries.
	ErrEmptyTable = errors.New("frequency table is empty")

	// ErrZeroTotalWeight is returned when the weights of a required frequency table sum to zero.
	ErrZeroTotalWeight = errors.New("frequency table has no positive weight")

	// ErrPersistence wraps failures of PersistenceSink.Store. It is contained to the single store call.
	ErrPersistence = errors.New("storing patient failed")

	// ErrNilSink is returned when a Model is built without a PersistenceSink.
	ErrNilSink = errors.New("persistence sink must not be nil")

	// ErrNilScheduler is returned when an activation is asked to schedule itself without a Scheduler.
	ErrNilScheduler = errors.New("scheduler must not be nil")

	// ErrNilSampler is returned when an ArrivalGenerator is built without a PatientAttributeSampler.
	ErrNilSampler = errors.New("patient attribute sampler must not be nil")
)
