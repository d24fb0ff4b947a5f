// Package cli implements the portfolioctl command line tool.
package cli

import (
	"context"
	"io"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-radar/internal/app"
	"github.com/ndewijer/portfolio-radar/internal/config"
	"github.com/ndewijer/portfolio-radar/internal/logging"
	"github.com/ndewijer/portfolio-radar/internal/version"
)

type options struct {
	verbose bool
	json    bool
}

// NewRootCommand builds the portfolioctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "portfolioctl",
		Version:       version.Version,
		Short:         "Operate the portfolio radar from the command line",
		Long:          `Run migrations, refresh prices and print the radar, summary and projections against the configured database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at the configured LOG_LEVEL instead of warn")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		newMigrateCommand(opts),
		newRefreshCommand(opts),
		newRadarCommand(opts),
		newSummaryCommand(opts),
		newProjectionCommand(opts),
		newTokenCommand(),
	)
	return root
}

// logger returns the CLI logger. Without --verbose only warnings reach stderr
// so that command output stays readable.
func (o *options) logger(cfg *config.Config) zerolog.Logger {
	level := "warn"
	if o.verbose {
		level = cfg.Log.Level
	}
	return logging.New(level, "console")
}

// withApp loads configuration, assembles the application and runs fn.
func (o *options) withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, o.logger(cfg))
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
