package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/webauth/pkg/config"
	"github.com/dmitrymomot/webauth/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Prepare the storage backend schema",
	Long: `Creates the webauth_store table (postgres, sqlite) or the TTL index
(mongo). Memory and Redis need no schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			logCfg     logger.Config
			backendCfg backendConfig
		)
		if err := config.Load(&logCfg); err != nil {
			return err
		}
		if err := config.Load(&backendCfg); err != nil {
			return err
		}
		log := logger.NewFromConfig(logCfg)

		err := runMigrate(cmd, backendCfg, log)
		if errors.Is(err, errNoMigration) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", backendCfg.Backend, err)
			return nil
		}
		if err != nil {
			return err
		}
		log.InfoContext(cmd.Context(), "storage migrated", logger.Backend(backendCfg.Backend))
		return nil
	},
}

var errNoMigration = errors.New("backend needs no migration")

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, cfg backendConfig, log *slog.Logger) error {
	switch cfg.Backend {
	case backendMemory, backendRedis, "":
		return errNoMigration
	}

	opened, err := openBackend(cmd.Context(), cfg, true, log)
	if err != nil {
		return err
	}
	return opened.Close(cmd.Context())
}
