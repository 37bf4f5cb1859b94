package commands

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/hipfracture-arrivals/internal/logging"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL patient table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sink, err := openPostgresSink(cmd.Context(), a.cfg, logging.NewAdapter(a.logger), nil)
			if err != nil {
				return err
			}

			a.logger.Info().Str("table", sink.postgres.TableName()).Msg("patient table ready")

			return sink.Close()
		},
	}

	cmd.Flags().String("db-adapter", "", "PostgreSQL adapter: pgx, sql or sqlx")
	cmd.Flags().String("database", "", "PostgreSQL connection string")
	cmd.Flags().String("table", "", "PostgreSQL patient table")

	return cmd
}
