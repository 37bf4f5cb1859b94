package helper

import (
	"context"
	"errors"
	"sync"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

// ErrSinkUnavailable is the error returned by FailingSink.
var ErrSinkUnavailable = errors.New("sink unavailable")

// RecordingSink is a PersistenceSink that keeps every stored patient in memory.
type RecordingSink struct {
	mu       sync.Mutex
	patients []arrivals.Patient
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Store implements arrivals.PersistenceSink.
func (s *RecordingSink) Store(_ context.Context, patient arrivals.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients = append(s.patients, patient)

	return nil
}

// Patients returns a copy of the stored patients in store order.
func (s *RecordingSink) Patients() []arrivals.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	patients := make([]arrivals.Patient, len(s.patients))
	copy(patients, s.patients)

	return patients
}

// Count returns the number of stored patients.
func (s *RecordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.patients)
}

// CountBySex returns the number of stored patients of sex.
func (s *RecordingSink) CountBySex(sex arrivals.Sex) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, patient := range s.patients {
		if patient.Sex == sex {
			count++
		}
	}

	return count
}

// FailingSink fails every call whose 1-based number is a multiple of failEvery.
// With failEvery 1 every call fails.
type FailingSink struct {
	mu        sync.Mutex
	failEvery int
	calls     int
	RecordingSink
}

// NewFailingSink creates a FailingSink. Successful calls are recorded.
func NewFailingSink(failEvery int) *FailingSink {
	return &FailingSink{failEvery: failEvery}
}

// Store implements arrivals.PersistenceSink.
func (s *FailingSink) Store(ctx context.Context, patient arrivals.Patient) error {
	s.mu.Lock()
	s.calls++
	fail := s.failEvery > 0 && s.calls%s.failEvery == 0
	s.mu.Unlock()

	if fail {
		return ErrSinkUnavailable
	}

	return s.RecordingSink.Store(ctx, patient)
}

// Calls returns the number of Store calls, failed ones included.
func (s *FailingSink) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}
