// Package app wires configuration, storage and the sync pipeline into the
// restaurant-sync command line.
package app

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X restaurant-sync/app.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

// NewRootCmd creates the restaurant-sync command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:               "restaurant-sync",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Synchronise Gyeonggi-do restaurant data into the restaurant table",
		Long: `restaurant-sync pulls the Genrestrt* data-sets from the Gyeonggi-do open data API,
normalises and deduplicates the rows, and upserts them into the restaurant table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file (default .env)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(newSyncCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := map[string]string{
				"version":  Version,
				"commit":   Commit,
				"go":       runtime.Version(),
				"platform": runtime.GOOS + "/" + runtime.GOARCH,
			}
			if format == "json" {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("format version info: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restaurant-sync %s (commit %s, %s, %s)\n",
				info["version"], info["commit"], info["go"], info["platform"])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format (json)")
	return cmd
}
