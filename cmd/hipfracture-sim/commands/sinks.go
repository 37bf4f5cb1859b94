package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/jsonlsink"
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/postgressink"
	"github.com/AntonStoeckl/hipfracture-arrivals/config"
)

// ErrDatabaseURLMissing is returned when a command needs PostgreSQL but no DSN is configured.
var ErrDatabaseURLMissing = errors.New("DATABASE_URL is required")

// discardSink accepts every patient and keeps nothing, for dry runs.
type discardSink struct{}

func (discardSink) Store(_ context.Context, _ arrivals.Patient) error {
	return nil
}

// openedSink is the sink selected by the configuration plus whatever must be released after the run.
type openedSink struct {
	arrivals.PersistenceSink
	postgres *postgressink.Sink
	close    func() error
}

func (s openedSink) Close() error {
	if s.close == nil {
		return nil
	}

	return s.close()
}

func openSink(ctx context.Context, cfg *config.Config, logger arrivals.Logger, metrics arrivals.MetricsCollector) (openedSink, error) {
	switch cfg.Sink {
	case config.SinkPostgres:
		return openPostgresSink(ctx, cfg, logger, metrics)

	case config.SinkJSONL:
		sink, err := jsonlsink.NewRotatingFileSink(cfg.JSONLPath, 0, jsonlsink.WithLogger(logger))
		if err != nil {
			return openedSink{}, err
		}

		return openedSink{PersistenceSink: sink, close: sink.Close}, nil

	default:
		return openedSink{PersistenceSink: discardSink{}}, nil
	}
}

// openPostgresSink connects through the configured adapter and makes sure the patient table exists.
func openPostgresSink(ctx context.Context, cfg *config.Config, logger arrivals.Logger, metrics arrivals.MetricsCollector) (openedSink, error) {
	if cfg.DatabaseURL == "" {
		return openedSink{}, ErrDatabaseURLMissing
	}

	options := []postgressink.Option{
		postgressink.WithTableName(cfg.PatientTable),
		postgressink.WithLogger(logger),
	}
	if metrics != nil {
		options = append(options, postgressink.WithMetrics(metrics))
	}

	var (
		sink    *postgressink.Sink
		closeDB func() error
		err     error
	)

	switch cfg.DBAdapter {
	case config.AdapterSQL:
		db, dbErr := config.NewSQLDB(ctx, cfg.DatabaseURL)
		if dbErr != nil {
			return openedSink{}, dbErr
		}
		closeDB = db.Close
		sink, err = postgressink.NewSinkFromSQLDB(db, options...)

	case config.AdapterSQLX:
		db, dbErr := config.NewSQLX(ctx, cfg.DatabaseURL)
		if dbErr != nil {
			return openedSink{}, dbErr
		}
		closeDB = db.Close
		sink, err = postgressink.NewSinkFromSQLX(db, options...)

	default:
		pool, dbErr := config.NewPGXPool(ctx, cfg.DatabaseURL)
		if dbErr != nil {
			return openedSink{}, dbErr
		}
		closeDB = func() error { pool.Close(); return nil }
		sink, err = postgressink.NewSinkFromPGXPool(pool, options...)
	}

	if err != nil {
		return openedSink{}, errors.Join(err, closeDB())
	}

	if err := sink.EnsureTable(ctx); err != nil {
		return openedSink{}, errors.Join(fmt.Errorf("prepare table %s: %w", sink.TableName(), err), closeDB())
	}

	return openedSink{PersistenceSink: sink, postgres: sink, close: closeDB}, nil
}
