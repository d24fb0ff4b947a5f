package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-radar/internal/app"
	"github.com/ndewijer/portfolio-radar/internal/model"
)

func newRadarCommand(opts *options) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Print the positions ranked by margin of safety",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if refresh {
					a.Services.Refresh.Refresh(ctx, "cli")
				}

				recs := a.Services.Radar.Rank()
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), recs)
				}
				return printRadar(cmd.OutOrStdout(), recs)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", true, "Refresh quotes before ranking")
	return cmd
}

func printRadar(w io.Writer, recs []model.Recommendation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TICKER\tPRICE\tFAIR\tCEILING\tMARGIN %\tQUALITY\tTIER\t")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.1f\t%.2f\t%s\t\n",
			r.Ticker, r.CurrentPrice, r.FairValue, r.CeilingPrice, r.MarginOfSafetyPercent, r.QualityScore, r.Tier)
	}
	return tw.Flush()
}
