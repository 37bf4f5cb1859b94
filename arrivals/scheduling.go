package arrivals

import "context"

// Activation is a scheduled component whose logic runs to completion at one simulated instant.
type Activation interface {
	Name() string
	Activate(ctx context.Context, now Minutes, scheduler Scheduler) error
}

// Scheduler is the part of the simulation runtime an Activation relies on.
// The runtime orders activations by simulated time and invokes them one at a time.
type Scheduler interface {
	// ScheduleInitial requests the activation at the absolute simulated time at.
	ScheduleInitial(activation Activation, at Minutes) error

	// ScheduleActivation requests the activation after delay simulated minutes from now.
	ScheduleActivation(activation Activation, delay Minutes) error
}

// PersistenceSink durably records generated patients.
// Each call is an independent insert; repeated calls are never deduplicated.
type PersistenceSink interface {
	Store(ctx context.Context, patient Patient) error
}
