// Package adapters abstracts the three supported PostgreSQL client libraries
// (pgx pool, database/sql and sqlx) behind one small interface, so the patient sink
// builds and runs its statements the same way on every one of them.
package adapters
