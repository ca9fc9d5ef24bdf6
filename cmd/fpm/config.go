package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fpm/internal/config"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fpm configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after applying the config file, FPM_*
environment variables and command-line flags.

Examples:
  fpm config show
  fpm config show --format json
  FPM_DB_DIR=/tmp/db fpm config show`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format (toml, json)")

	configCmd.AddCommand(configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	switch configFormat {
	case "json":
		return writeJSON(cmd.OutOrStdout(), cfg)
	case "toml":
		data, err := cfg.MarshalTOML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", configFormat)
	}
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path := config.ResolvePath(configPath)
	if path == "" {
		return fmt.Errorf("no config location: neither XDG_CONFIG_HOME nor a home directory is set")
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
