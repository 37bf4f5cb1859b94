package helper

import (
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

// ScheduleRequest is one call captured by RecordingScheduler.
type ScheduleRequest struct {
	Activation arrivals.Activation
	Initial    bool
	Minutes    arrivals.Minutes
}

// RecordingScheduler is a Scheduler that only records requests, it never delivers activations.
type RecordingScheduler struct {
	Requests []ScheduleRequest
	Err      error
}

// NewRecordingScheduler creates an empty RecordingScheduler.
func NewRecordingScheduler() *RecordingScheduler {
	return &RecordingScheduler{}
}

// ScheduleInitial implements arrivals.Scheduler.
func (s *RecordingScheduler) ScheduleInitial(activation arrivals.Activation, at arrivals.Minutes) error {
	if s.Err != nil {
		return s.Err
	}

	s.Requests = append(s.Requests, ScheduleRequest{Activation: activation, Initial: true, Minutes: at})

	return nil
}

// ScheduleActivation implements arrivals.Scheduler.
func (s *RecordingScheduler) ScheduleActivation(activation arrivals.Activation, delay arrivals.Minutes) error {
	if s.Err != nil {
		return s.Err
	}

	s.Requests = append(s.Requests, ScheduleRequest{Activation: activation, Minutes: delay})

	return nil
}
