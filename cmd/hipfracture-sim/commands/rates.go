package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/catchment"
)

func newRatesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Print the derived arrival rates of every catchment for one year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.rates(cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("year", "", "simulation year, e.g. 2016")
	cmd.Flags().String("tables", "", "YAML tables file, the built-in tables when empty")

	return cmd
}

func (a *app) rates(out io.Writer) error {
	set, err := catchment.LoadFile(a.cfg.TablesFile)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Arrival rates for %s\n", a.cfg.SimYear)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CHO\tSHARE %\tMALE/YEAR\tMALE INTERARRIVAL\tFEMALE/YEAR\tFEMALE INTERARRIVAL")

	for _, cho := range set.Catchments() {
		tables, err := set.Select(a.cfg.SimYear, cho)
		if err != nil {
			return err
		}

		male := rateColumns(tables.Population.Male, tables.SharePercent, tables.Incidence.Male)
		female := rateColumns(tables.Population.Female, tables.SharePercent, tables.Incidence.Female)

		_, _ = fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\n", cho, tables.SharePercent, male, female)
	}

	return tw.Flush()
}

// rateColumns renders the expected cases and the inter-arrival time, "-" when the rate is undefined.
func rateColumns(population, sharePercent, incidence float64) string {
	cases := arrivals.ExpectedAnnualCases(population, sharePercent, incidence)

	delay, err := arrivals.MeanInterarrivalMinutes(population, sharePercent, incidence)
	if errors.Is(err, arrivals.ErrConfiguration) {
		return fmt.Sprintf("%.0f\t-", cases)
	}

	return fmt.Sprintf("%.0f\t%.2f", cases, float64(delay))
}
