// Package cmd provides the CLI commands for authgate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/webauth/pkg/config"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "authgate - redirect-based authentication gateway",
	Long: `authgate protects HTTP routes with OAuth2 logins.

Profiles and pending login state are kept in a session store backed by
memory, Redis, PostgreSQL, MongoDB or SQLite (STORAGE_BACKEND).

Configuration is read from the environment, optionally from .env files
given with --env-file.

Commands:
  serve       Start the HTTP server
  migrate     Prepare the storage backend schema
  version     Print version information`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if len(envFiles) == 0 {
			return nil
		}
		return config.LoadEnv(envFiles...)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "load environment from these .env files")
}
