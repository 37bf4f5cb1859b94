package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/oteladapters"
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/simengine"
	"github.com/AntonStoeckl/hipfracture-arrivals/catchment"
	"github.com/AntonStoeckl/hipfracture-arrivals/config"
	"github.com/AntonStoeckl/hipfracture-arrivals/internal/logging"
)

const meterName = "github.com/AntonStoeckl/hipfracture-arrivals"

// ErrRunInterrupted is returned when the run was stopped by a signal before reaching its end.
var ErrRunInterrupted = errors.New("run interrupted")

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate patient arrivals for one catchment and year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("year", "", "simulation year, e.g. 2016")
	flags.String("cho", "", "catchment, CHO1 to CHO9")
	flags.Uint64("seed", 0, "seed of the random source")
	flags.Int("days", 0, "simulated run length in days")
	flags.String("sink", "", "where patients go: postgres, jsonl or none")
	flags.String("db-adapter", "", "PostgreSQL adapter: pgx, sql or sqlx")
	flags.String("database", "", "PostgreSQL connection string")
	flags.String("table", "", "PostgreSQL patient table")
	flags.String("jsonl", "", "JSON lines output file")
	flags.String("tables", "", "YAML tables file, the built-in tables when empty")
	flags.Bool("metrics", false, "collect metrics and print a summary after the run")

	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer) error {
	cfg := a.cfg
	adapter := logging.NewAdapter(a.logger)

	tables, err := loadTables(cfg)
	if err != nil {
		return err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("create run id: %w", err)
	}

	var (
		reader  *sdkmetric.ManualReader
		metrics arrivals.MetricsCollector
	)
	modelOptions := []arrivals.Option{arrivals.WithContextualLogger(adapter)}

	if cfg.MetricsEnabled {
		reader = sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = provider.Shutdown(context.Background()) }()

		metrics = oteladapters.NewMetricsCollector(provider.Meter(meterName))
		modelOptions = append(modelOptions, arrivals.WithMetrics(metrics))
	}

	sink, err := openSink(ctx, cfg, adapter, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			a.logger.Error().Err(closeErr).Msg("closing sink failed")
		}
	}()

	run := arrivals.RunConfig{Year: cfg.SimYear, Catchment: cfg.SimCHO, Seed: cfg.SimSeed, RunID: runID}

	model, err := arrivals.NewModel(run, tables, sink, modelOptions...)
	if err != nil {
		return err
	}

	engine, err := simengine.NewEngine(simengine.WithLogger(adapter))
	if err != nil {
		return err
	}

	if err := model.DoInitialSchedules(engine); err != nil {
		return err
	}

	stats, runErr := runEngine(ctx, a, engine, cfg.RunLength())

	report := model.Report()
	printReport(out, report, stats)

	if sink.postgres != nil {
		if countErr := printStoredRows(ctx, out, sink.postgres, runID); countErr != nil {
			a.logger.Error().Err(countErr).Msg("counting stored patients failed")
		}
	}

	if reader != nil {
		lines, summaryErr := oteladapters.Summary(context.Background(), reader)
		if summaryErr != nil {
			return summaryErr
		}
		printMetrics(out, lines)
	}

	return runErr
}

// runEngine runs the event loop until stopAt and, in a second goroutine, reports a shutdown request.
func runEngine(ctx context.Context, a *app, engine *simengine.Engine, stopAt arrivals.Minutes) (simengine.RunStats, error) {
	var stats simengine.RunStats

	runCtx, finished := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer finished()

		var err error
		stats, err = engine.RunUntil(gctx, stopAt)

		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.logger.Warn().Msg("shutdown requested, stopping run")
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return stats, errors.Join(ErrRunInterrupted, err)
		}

		return stats, err
	}

	return stats, nil
}

// runCounter is the part of the PostgreSQL sink used to verify a run.
type runCounter interface {
	CountRun(ctx context.Context, runID uuid.UUID) (int64, error)
	TableName() string
}

// printStoredRows counts the rows of the run. The count also runs after an interrupt,
// so it does not inherit the cancellation of ctx.
func printStoredRows(ctx context.Context, out io.Writer, counter runCounter, runID uuid.UUID) error {
	stored, err := counter.CountRun(context.WithoutCancel(ctx), runID)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Stored rows: %d (table %s)\n", stored, counter.TableName())

	return nil
}

func loadTables(cfg *config.Config) (arrivals.Tables, error) {
	set, err := catchment.LoadFile(cfg.TablesFile)
	if err != nil {
		return arrivals.Tables{}, err
	}

	return set.Select(cfg.SimYear, cfg.SimCHO)
}

func printReport(out io.Writer, report arrivals.Report, stats simengine.RunStats) {
	_, _ = fmt.Fprintf(out, "Run %s: %s %s, seed %d, ended at minute %.0f\n",
		report.RunID, report.Catchment, report.Year, report.Seed, float64(stats.EndedAt))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SEX\tEXPECTED/YEAR\tINTERARRIVAL (MIN)\tGENERATED\tPERSISTED\tFAILED")

	for _, r := range []arrivals.SexReport{report.Male, report.Female} {
		_, _ = fmt.Fprintf(tw, "%s\t%.0f\t%.2f\t%d\t%d\t%d\n",
			r.Sex, r.ExpectedAnnualCases, float64(r.MeanInterarrival), r.Activations, r.Persisted, r.PersistenceFailures)
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintf(out, "Generated Count: %d\n", report.Generated())
}

func printMetrics(out io.Writer, lines []oteladapters.SummaryLine) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "METRIC\tKIND\tCOUNT\tVALUE")

	for _, line := range lines {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\n", line.Name, line.Kind, line.Count, line.Value)
	}
	_ = tw.Flush()
}
