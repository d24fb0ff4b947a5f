package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-radar/internal/app"
	"github.com/ndewijer/portfolio-radar/internal/model"
)

func newProjectionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "projection TICKER",
		Short: "Print the 90-day projection of one position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				proj, err := a.Services.Radar.Projection(ctx, args[0])
				if err != nil {
					return err
				}
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), proj)
				}
				printProjection(cmd.OutOrStdout(), proj)
				return nil
			})
		},
	}
}

func printProjection(w io.Writer, p model.Projection) {
	fmt.Fprintf(w, "%s  last %.2f  fair %.2f  quality %.2f  quarter %+.2f%%\n",
		p.Ticker, p.LastPrice, p.FairValue, p.QualityScore, p.QuarterlyReturn*100)
	for _, pt := range p.Points {
		fmt.Fprintf(w, "  %s  %.2f\n", pt.Date.Format("2006-01-02"), pt.Price)
	}
	if p.HistoryError != "" {
		fmt.Fprintf(w, "history unavailable: %s\n", p.HistoryError)
	}
	fmt.Fprintln(w, p.Disclaimer)
}
