package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LebsNeo/mrmoney-sub000/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "mrmoney",
		Short:   "Bank statement and OTA payout ingestion for hospitality properties",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "mrmoney.yaml", "config file")
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}
