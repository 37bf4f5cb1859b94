// Package postgressink persists generated patients into a PostgreSQL table, one INSERT per patient.
//
// The sink is append-only: it never reads back, updates or deletes individual records, and it does not
// deduplicate. Three client libraries are supported through constructors:
//
//	sink, err := postgressink.NewSinkFromPGXPool(pool)
//	sink, err := postgressink.NewSinkFromSQLDB(db)
//	sink, err := postgressink.NewSinkFromSQLX(db)
//
// EnsureTable creates the target table when it does not exist yet. CountRun counts the rows written by
// one run, which is how operators and integration tests verify a run end to end.
package postgressink
