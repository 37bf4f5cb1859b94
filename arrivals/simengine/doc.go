// Package simengine provides a minimal discrete-event runtime for arrivals.Activation components.
//
// The engine is single-threaded and cooperative: activations are ordered by simulated time
// (ties in scheduling order) and invoked one at a time, each running to completion.
// A run ends at a simulated-time bound or when the context is canceled; activations never
// need to detect their own end.
//
// Usage example:
//
//	engine, _ := simengine.NewEngine(simengine.WithLogger(logger))
//	_ = model.DoInitialSchedules(engine)
//	stats, err := engine.RunUntil(ctx, 365*arrivals.MinutesPerDay)
package simengine
