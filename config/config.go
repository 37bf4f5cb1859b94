package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

// Configuration keys, also used as environment variable names.
const (
	KeySimYear        = "SIM_YEAR"
	KeySimCHO         = "SIM_CHO"
	KeySimSeed        = "SIM_SEED"
	KeySimDays        = "SIM_DAYS"
	KeySink           = "SINK"
	KeyDBAdapter      = "DB_ADAPTER"
	KeyDatabaseURL    = "DATABASE_URL"
	KeyPatientTable   = "PATIENT_TABLE"
	KeyJSONLPath      = "JSONL_PATH"
	KeyTablesFile     = "TABLES_FILE"
	KeyMetricsEnabled = "METRICS_ENABLED"
	KeyLogLevel       = "LOG_LEVEL"
	KeyLogsFolder     = "LOGS_FOLDER"
)

// Sink kinds.
const (
	SinkPostgres = "postgres"
	SinkJSONL    = "jsonl"
	SinkNone     = "none"
)

// Database adapter kinds.
const (
	AdapterPGX  = "pgx"
	AdapterSQL  = "sql"
	AdapterSQLX = "sqlx"
)

var (
	// ErrInvalidConfig is returned when a configuration value is missing or not allowed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the application configuration.
type Config struct {
	SimYear        string `mapstructure:"SIM_YEAR"`
	SimCHO         string `mapstructure:"SIM_CHO"`
	SimSeed        uint64 `mapstructure:"SIM_SEED"`
	SimDays        int    `mapstructure:"SIM_DAYS"`
	Sink           string `mapstructure:"SINK"`
	DBAdapter      string `mapstructure:"DB_ADAPTER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	PatientTable   string `mapstructure:"PATIENT_TABLE"`
	JSONLPath      string `mapstructure:"JSONL_PATH"`
	TablesFile     string `mapstructure:"TABLES_FILE"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	LogsFolder     string `mapstructure:"LOGS_FOLDER"`
}

// LoadDotEnv loads environment variables from the given files, or from .env when none is given.
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, filename := range filenames {
		if _, err := os.Stat(filename); err != nil {
			continue
		}

		if err := godotenv.Load(filename); err != nil {
			return fmt.Errorf("load %s: %w", filename, err)
		}
	}

	return nil
}

// NewViper returns a viper instance with defaults and environment bindings for every key.
// Callers may bind command line flags on it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(KeySimYear, "2016")
	v.SetDefault(KeySimCHO, "CHO2")
	v.SetDefault(KeySimSeed, 1)
	v.SetDefault(KeySimDays, 365)
	v.SetDefault(KeySink, SinkJSONL)
	v.SetDefault(KeyDBAdapter, AdapterPGX)
	v.SetDefault(KeyPatientTable, "los_predictions")
	v.SetDefault(KeyJSONLPath, "patients.jsonl")
	v.SetDefault(KeyMetricsEnabled, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogsFolder, "")

	for _, key := range []string{
		KeySimYear, KeySimCHO, KeySimSeed, KeySimDays, KeySink, KeyDBAdapter, KeyDatabaseURL,
		KeyPatientTable, KeyJSONLPath, KeyTablesFile, KeyMetricsEnabled, KeyLogLevel, KeyLogsFolder,
	} {
		_ = v.BindEnv(key)
	}

	return v
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Sink = strings.ToLower(cfg.Sink)
	cfg.DBAdapter = strings.ToLower(cfg.DBAdapter)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration can be run.
func (c *Config) Validate() error {
	if c.SimYear == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, KeySimYear)
	}

	if c.SimCHO == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, KeySimCHO)
	}

	if c.SimDays <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, KeySimDays, c.SimDays)
	}

	switch c.Sink {
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: %s is required for the %s sink", ErrInvalidConfig, KeyDatabaseURL, SinkPostgres)
		}
	case SinkJSONL:
		if c.JSONLPath == "" {
			return fmt.Errorf("%w: %s is required for the %s sink", ErrInvalidConfig, KeyJSONLPath, SinkJSONL)
		}
	case SinkNone:
	default:
		return fmt.Errorf("%w: %s must be %q, %q or %q, got %q",
			ErrInvalidConfig, KeySink, SinkPostgres, SinkJSONL, SinkNone, c.Sink)
	}

	switch c.DBAdapter {
	case AdapterPGX, AdapterSQL, AdapterSQLX:
	default:
		return fmt.Errorf("%w: %s must be %q, %q or %q, got %q",
			ErrInvalidConfig, KeyDBAdapter, AdapterPGX, AdapterSQL, AdapterSQLX, c.DBAdapter)
	}

	return nil
}

// RunLength returns the configured simulated run length.
func (c *Config) RunLength() arrivals.Minutes {
	return arrivals.Minutes(c.SimDays) * arrivals.MinutesPerDay
}
