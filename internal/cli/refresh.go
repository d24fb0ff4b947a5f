package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-radar/internal/app"
	"github.com/ndewijer/portfolio-radar/internal/model"
)

func newRefreshCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch current quotes for every position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				result := a.Services.Refresh.Refresh(ctx, "cli")
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), result)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "outcome:  %s (%s)\n", result.Outcome, result.Duration)
				fmt.Fprintf(out, "updated:  %s\n", strings.Join(result.Updated, ", "))
				if len(result.Missing) > 0 {
					fmt.Fprintf(out, "missing:  %s\n", strings.Join(result.Missing, ", "))
				}
				if result.Outcome == model.RefreshFailed {
					return fmt.Errorf("refresh failed: %s", result.Error)
				}
				return nil
			})
		},
	}
}
