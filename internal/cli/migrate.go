package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndewijer/portfolio-radar/internal/config"
	"github.com/ndewijer/portfolio-radar/internal/database"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := opts.logger(cfg)

			db, err := database.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			before, err := database.SchemaVersion(db)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			after, err := database.SchemaVersion(db)
			if err != nil {
				return err
			}

			logger.Info().Int64("from", before).Int64("to", after).Msg("Migrations applied")
			if before == after {
				fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date at version %d\n", cfg.Database.Path, after)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database %s migrated from version %d to %d\n", cfg.Database.Path, before, after)
			return nil
		},
	}
}
