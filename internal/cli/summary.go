package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-radar/internal/api/request"
	"github.com/ndewijer/portfolio-radar/internal/app"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

func newSummaryCommand(opts *options) *cobra.Command {
	var assetClass string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print portfolio totals and allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := request.ParsePortfolioFilters(assetClass, "", "")
			if err != nil {
				return err
			}

			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				summary, err := a.Services.Aggregator.Summary(ctx, filters.Filter)
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), summary)
				}
				return printSummary(cmd.OutOrStdout(), summary)
			})
		},
	}
	cmd.Flags().StringVar(&assetClass, "asset-class", "", "Only include one asset class")
	return cmd
}

func brl(amount float64) string {
	return money.NewFromFloat(amount, service.DomesticCurrency).Display()
}

func printSummary(w io.Writer, s model.PortfolioSummary) error {
	fmt.Fprintf(w, "invested:      %s\n", brl(s.TotalInvested))
	fmt.Fprintf(w, "market value:  %s\n", brl(s.TotalMarketValue))
	fmt.Fprintf(w, "profit:        %s (%.2f%%)\n", brl(s.TotalProfit), s.ReturnPercent)
	fmt.Fprintf(w, "dividends:     %s (%.2f%% with dividends)\n\n", brl(s.TotalDividends), s.ReturnWithDividendsPercent)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tVALUE\tWEIGHT %")
	for _, a := range s.Allocation {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\n", a.Label, brl(a.Value), a.Percent)
	}
	return tw.Flush()
}
