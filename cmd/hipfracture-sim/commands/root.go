// Package commands holds the cobra command tree of hipfracture-sim.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/hipfracture-arrivals/config"
	"github.com/AntonStoeckl/hipfracture-arrivals/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// flagKeys maps command line flags to configuration keys. Flags a command does not define are skipped.
var flagKeys = map[string]string{
	"year":        config.KeySimYear,
	"cho":         config.KeySimCHO,
	"seed":        config.KeySimSeed,
	"days":        config.KeySimDays,
	"sink":        config.KeySink,
	"db-adapter":  config.KeyDBAdapter,
	"database":    config.KeyDatabaseURL,
	"table":       config.KeyPatientTable,
	"jsonl":       config.KeyJSONLPath,
	"tables":      config.KeyTablesFile,
	"metrics":     config.KeyMetricsEnabled,
	"log-level":   config.KeyLogLevel,
	"logs-folder": config.KeyLogsFolder,
}

// app is the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	envFile string
	cfg     *config.Config
	logger  zerolog.Logger
	closer  io.Closer
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "hipfracture-sim",
		Short: "Hip fracture patient arrival generator",
		Long: `Generates a stream of synthetic hip fracture patients for one catchment (CHO) and
simulation year. Arrivals follow a constant rate per sex derived from population and
incidence tables; patient attributes are sampled from historical frequency tables.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load, ignored when missing")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().String("logs-folder", "", "folder for the rotating log file, disabled when empty")

	root.AddCommand(
		newRunCommand(a),
		newRatesCommand(a),
		newMigrateCommand(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if key, ok := flagKeys[flag.Name]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(key, flag)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.LogLevel, Folder: cfg.LogsFolder}
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		opts.Console = w
	}

	a.logger, a.closer, err = logging.Init(opts)
	if err != nil {
		return err
	}

	a.logger.Debug().
		Str("version", Version).
		Str("commit", Commit).
		Str("buildDate", BuildDate).
		Str("command", cmd.Name()).
		Msg("hipfracture-sim starting")

	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.closer == nil {
		return nil
	}

	return a.closer.Close()
}
