package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carson-networks/allowance-server/internal/config"
	"github.com/carson-networks/allowance-server/internal/storage"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.StorageBackend == config.BackendMemory {
				return errors.New("migrate: the memory backend has no schema")
			}

			db, err := storage.OpenDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := storage.RunMigrations(db, opts.logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d\n",
				result.PreMigrationVersion, result.PostMigrationVersion)
			return nil
		},
	}
}
