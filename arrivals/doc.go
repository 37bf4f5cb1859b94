// Package arrivals provides the core of a discrete-event patient-arrival generator
// for hip-fracture admissions in a set of catchment areas (CHOs).
//
// The package contains three pieces with real algorithmic content:
//   - EmpiricalDistribution: weighted sampling over a finite set of discrete values
//   - MeanInterarrivalMinutes: the constant arrival rate derived from population and incidence
//   - ArrivalGenerator: a self-rescheduling activation that creates and persists one Patient per activation
//
// Everything else is wiring: a PatientAttributeSampler composes six distributions into a Patient,
// and a Model builds both generators (male and female) from one catchment/year selection of Tables.
//
// The simulation runtime and the durable store are external collaborators, reached through the
// Scheduler and PersistenceSink interfaces. See the simengine, postgressink and jsonlsink packages
// for implementations.
//
// Common usage pattern:
//
//	run := arrivals.RunConfig{Year: "2013", Catchment: "CHO5", Seed: 42, RunID: uuid.Must(uuid.NewV7())}
//	model, err := arrivals.NewModel(run, tables, sink, arrivals.WithLogger(logger))
//	if err != nil {
//		// configuration errors are fatal, the run must not start
//	}
//
//	engine, err := simengine.NewEngine(simengine.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	_ = model.DoInitialSchedules(engine)
//	_, err = engine.RunUntil(ctx, arrivals.MinutesPerYear)
package arrivals
