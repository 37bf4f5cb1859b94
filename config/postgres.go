package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

const (
	driverPostgres = "postgres"

	pgxMaxConnections    = int32(4)
	pgxMinConnections    = int32(1)
	pgxHealthCheckPeriod = time.Minute
	pgxConnectTimeout    = time.Second * 5

	sqlMaxOpenConnections = 4
	sqlMaxIdleConnections = 2

	maxConnLifetime = time.Hour
	maxConnIdleTime = time.Minute * 5
)

// PostgresPGXPoolConfig creates a pgxpool.Config for dsn.
// The simulation writes from a single goroutine, so the pool stays small.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	dbConfig.MaxConns = pgxMaxConnections
	dbConfig.MinConns = pgxMinConnections
	dbConfig.MaxConnLifetime = maxConnLifetime
	dbConfig.MaxConnIdleTime = maxConnIdleTime
	dbConfig.HealthCheckPeriod = pgxHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = pgxConnectTimeout

	return dbConfig, nil
}

// NewPGXPool connects a pgx pool and pings it.
func NewPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return pool, nil
}

// NewSQLDB opens a database/sql connection through lib/pq and pings it.
func NewSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	configureSQLPool(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return db, nil
}

// NewSQLX opens a sqlx connection through lib/pq and pings it.
func NewSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	configureSQLPool(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return db, nil
}

func configureSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(sqlMaxOpenConnections)
	db.SetMaxIdleConns(sqlMaxIdleConnections)
	db.SetConnMaxLifetime(maxConnLifetime)
	db.SetConnMaxIdleTime(maxConnIdleTime)
}
