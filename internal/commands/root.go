package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidmtz-dev/bancos-reader/internal/buildinfo"
	"github.com/davidmtz-dev/bancos-reader/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bancos-reader",
		Short:   "Extract transaction records from BBVA statement PDFs",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to bancos-reader.yaml (optional)")

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

// loadConfig reads the config named by --config, or returns defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
