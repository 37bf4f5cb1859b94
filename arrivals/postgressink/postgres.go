package postgressink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/postgressink/internal/adapters"
)

const (
	dialectPostgres  = "postgres"
	defaultTableName = "los_predictions"

	colHospitalID    = "hosp_id"
	colSex           = "sex"
	colResidenceID   = "res_id"
	colAge           = "age"
	colDiagnosis     = "diag1"
	colFractureType  = "adm_fracture_type"
	colFragility     = "adm_fragility"
	colCatchment     = "cho"
	colSimYear       = "sim_year"
	colRunID         = "run_id"
	colArrivalMinute = "arrival_minute"

	metricInsertDuration = "arrivals_postgres_insert_duration_seconds"
	metricInserts        = "arrivals_postgres_inserts_total"
	labelStatus          = "status"
	statusSuccess        = "success"
	statusError          = "error"

	logMsgBuildInsertFailed = "building insert statement failed"
	logMsgInsertFailed      = "inserting patient failed"
	logMsgInserted          = "patient inserted"
	logMsgTableEnsured      = "patient table ensured"
	logMsgCreateTableFailed = "creating patient table failed"
	logMsgCountFailed       = "counting patients failed"
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrTable            = "table"
	logAttrDurationMS       = "duration_ms"
	logAttrRowsAffected     = "rows_affected"
)

var (
	// ErrNilDatabaseConnection is returned when a nil connection is given to a constructor.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrBuildingQueryFailed is returned when goqu cannot render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrInsertFailed is returned when the INSERT statement fails.
	ErrInsertFailed = errors.New("inserting patient failed")

	// ErrUnexpectedRowsAffected is returned when an INSERT did not write exactly one row.
	ErrUnexpectedRowsAffected = errors.New("unexpected number of rows affected")

	// ErrCreateTableFailed is returned when the table bootstrap fails.
	ErrCreateTableFailed = errors.New("creating patient table failed")

	// ErrCountFailed is returned when counting the rows of a run fails.
	ErrCountFailed = errors.New("counting patients failed")
)

// Sink implements arrivals.PersistenceSink on PostgreSQL.
type Sink struct {
	db               adapters.DBAdapter
	tableName        string
	logger           arrivals.Logger
	metricsCollector arrivals.MetricsCollector
}

// NewSinkFromPGXPool creates a Sink backed by a pgx connection pool.
func NewSinkFromPGXPool(db *pgxpool.Pool, options ...Option) (*Sink, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewPGXAdapter(db), options...)
}

// NewSinkFromSQLDB creates a Sink backed by database/sql.
func NewSinkFromSQLDB(db *sql.DB, options ...Option) (*Sink, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewSQLAdapter(db), options...)
}

// NewSinkFromSQLX creates a Sink backed by sqlx.
func NewSinkFromSQLX(db *sqlx.DB, options ...Option) (*Sink, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewSQLXAdapter(db), options...)
}

func newSink(db adapters.DBAdapter, options ...Option) (*Sink, error) {
	s := &Sink{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// TableName returns the name of the target table.
func (s *Sink) TableName() string {
	return s.tableName
}

// Store inserts exactly one row for patient.
func (s *Sink) Store(ctx context.Context, patient arrivals.Patient) error {
	sqlQuery, err := s.buildInsertQuery(patient)
	if err != nil {
		s.logError(logMsgBuildInsertFailed, err)
		return err
	}

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)

	if execErr != nil {
		s.logError(logMsgInsertFailed, execErr, logAttrQuery, sqlQuery)
		s.recordInsert(duration, statusError)

		return errors.Join(ErrInsertFailed, execErr)
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		s.logError(logMsgInsertFailed, rowsErr)
		s.recordInsert(duration, statusError)

		return errors.Join(ErrInsertFailed, rowsErr)
	}

	if rowsAffected != 1 {
		s.recordInsert(duration, statusError)
		return fmt.Errorf("%w: %d", ErrUnexpectedRowsAffected, rowsAffected)
	}

	s.recordInsert(duration, statusSuccess)

	if s.logger != nil {
		s.logger.Debug(
			logMsgInserted,
			logAttrQuery, sqlQuery,
			logAttrDurationMS, s.toMilliseconds(duration),
			logAttrRowsAffected, rowsAffected,
		)
	}

	return nil
}

func (s *Sink) buildInsertQuery(patient arrivals.Patient) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			colHospitalID:    patient.HospitalID,
			colSex:           int(patient.Sex),
			colResidenceID:   patient.ResidenceID,
			colAge:           patient.Age,
			colDiagnosis:     patient.DiagnosisCode,
			colFractureType:  int(patient.FractureType),
			colFragility:     int(patient.Fragility),
			colCatchment:     patient.Catchment,
			colSimYear:       patient.Year,
			colRunID:         patient.RunID.String(),
			colArrivalMinute: float64(patient.ArrivalMinute),
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// EnsureTable creates the target table if it does not exist.
func (s *Sink) EnsureTable(ctx context.Context) error {
	ddl := s.createTableStatement()

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		s.logError(logMsgCreateTableFailed, err, logAttrTable, s.tableName)
		return errors.Join(ErrCreateTableFailed, err)
	}

	if s.logger != nil {
		s.logger.Info(logMsgTableEnsured, logAttrTable, s.tableName)
	}

	return nil
}

func (s *Sink) createTableStatement() string {
	table := pq.QuoteIdentifier(s.tableName)

	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	%s INTEGER NOT NULL,
	%s SMALLINT NOT NULL,
	%s INTEGER NOT NULL,
	%s INTEGER NOT NULL,
	%s TEXT NOT NULL,
	%s SMALLINT NOT NULL,
	%s SMALLINT NOT NULL,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL,
	%s UUID NOT NULL,
	%s DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS %s ON %s (%s)`,
		table,
		colHospitalID, colSex, colResidenceID, colAge, colDiagnosis,
		colFractureType, colFragility, colCatchment, colSimYear, colRunID, colArrivalMinute,
		pq.QuoteIdentifier(s.tableName+"_"+colRunID+"_idx"), table, colRunID,
	)
}

// CountRun returns the number of rows written by the run with the given ID.
func (s *Sink) CountRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colRunID).Eq(runID.String())).
		ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.db.Query(ctx, sqlQuery)
	if err != nil {
		s.logError(logMsgCountFailed, err, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrCountFailed, err)
	}
	defer func() { _ = rows.Close() }()

	var count int64
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, errors.Join(ErrCountFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return 0, errors.Join(ErrCountFailed, rowsErr)
	}

	return count, nil
}

func (s *Sink) recordInsert(duration time.Duration, status string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelStatus: status}
	s.metricsCollector.RecordDuration(metricInsertDuration, duration, labels)
	s.metricsCollector.IncrementCounter(metricInserts, labels)
}

func (s *Sink) logError(msg string, err error, args ...any) {
	if s.logger == nil {
		return
	}

	allArgs := append([]any{logAttrError, err.Error()}, args...)
	s.logger.Error(msg, allArgs...)
}

func (s *Sink) toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

var _ arrivals.PersistenceSink = (*Sink)(nil)
