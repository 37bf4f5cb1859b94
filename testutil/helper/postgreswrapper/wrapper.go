// Package postgreswrapper builds a patient sink on a real PostgreSQL database for integration tests,
// using the client library named by the ADAPTER_TYPE environment variable (pgx, sql or sqlx).
//
// Tests are skipped unless PATIENT_SINK_TEST_DSN is set.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/postgressink"
	"github.com/AntonStoeckl/hipfracture-arrivals/config"
)

const (
	envDSN     = "PATIENT_SINK_TEST_DSN"
	envAdapter = "ADAPTER_TYPE"

	// TestTableName is the table every integration test writes to.
	TestTableName = "los_predictions_test"
)

// Wrapper abstracts over the different client libraries.
type Wrapper interface {
	GetSink() *postgressink.Sink
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	sink *postgressink.Sink
}

func (w *PGXPoolWrapper) GetSink() *postgressink.Sink {
	return w.sink
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps database/sql-based testing.
type SQLDBWrapper struct {
	db   *sql.DB
	sink *postgressink.Sink
}

func (w *SQLDBWrapper) GetSink() *postgressink.Sink {
	return w.sink
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close()
}

// SQLXWrapper wraps sqlx-based testing.
type SQLXWrapper struct {
	db   *sqlx.DB
	sink *postgressink.Sink
}

func (w *SQLXWrapper) GetSink() *postgressink.Sink {
	return w.sink
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close()
}

// CreateWrapperWithTestConfig creates the wrapper for the adapter type from the environment,
// with the test table created and emptied. It skips the test when no DSN is configured.
func CreateWrapperWithTestConfig(t testing.TB) Wrapper {
	dsn := os.Getenv(envDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping PostgreSQL integration test", envDSN)
	}

	ctx := context.Background()
	var wrapper Wrapper

	switch adapterType := strings.ToLower(os.Getenv(envAdapter)); adapterType {
	case config.AdapterPGX, "":
		pool, err := config.NewPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		sink, err := postgressink.NewSinkFromPGXPool(pool, postgressink.WithTableName(TestTableName))
		require.NoError(t, err, "error creating sink in test setup")
		wrapper = &PGXPoolWrapper{pool: pool, sink: sink}

	case config.AdapterSQL:
		db, err := config.NewSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		sink, err := postgressink.NewSinkFromSQLDB(db, postgressink.WithTableName(TestTableName))
		require.NoError(t, err, "error creating sink in test setup")
		wrapper = &SQLDBWrapper{db: db, sink: sink}

	case config.AdapterSQLX:
		db, err := config.NewSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		sink, err := postgressink.NewSinkFromSQLX(db, postgressink.WithTableName(TestTableName))
		require.NoError(t, err, "error creating sink in test setup")
		wrapper = &SQLXWrapper{db: db, sink: sink}

	default:
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.GetSink().EnsureTable(ctx), "error creating the test table")
	CleanUp(t, wrapper)

	return wrapper
}

// CleanUp empties the test table.
func CleanUp(t testing.TB, wrapper Wrapper) {
	const truncate = "TRUNCATE TABLE " + TestTableName + " RESTART IDENTITY"

	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), truncate)
	case *SQLDBWrapper:
		_, err = w.db.Exec(truncate)
	case *SQLXWrapper:
		_, err = w.db.Exec(truncate)
	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error cleaning up the test table")
}
