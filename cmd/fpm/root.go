package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fpm/internal/config"
	"fpm/internal/errors"
	"fpm/internal/paths"
	"fpm/internal/registry"
	"fpm/internal/slogutil"
	"fpm/internal/version"
)

var (
	configPath string
	dbDirFlag  string
	verbosity  int
	quiet      bool

	// Set by the persistent pre-run of every command
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "fpm",
	Short: "fpm - Flatpak project and module registry",
	Long: `fpm keeps a local registry of software projects and Flatpak build modules.

Every project and module is a YAML file under the database directory
(default ~/.fpm-db, or FPM_DB_DIR). Projects that share the same root
commits are detected as siblings.`,
	Version:       version.Info(),
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentPreRunE = setup
	rootCmd.SetVersionTemplate("fpm version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/fpm/config.toml)")
	flags.StringVar(&dbDirFlag, config.DBDirFlag, "", "Database directory (overrides FPM_DB_DIR)")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Silence all logging")
}

// setup loads the configuration and builds the process logger
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath, rootCmd.PersistentFlags())
	if err != nil {
		return err
	}

	var override *slog.Level
	if verbosity > 0 || quiet {
		level := slogutil.LevelFromVerbosity(verbosity, quiet)
		override = &level
	}

	logger, logCloser, err = slogutil.Setup(cmd.ErrOrStderr(), cfg.Logging, layout(), override)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	slog.SetDefault(logger)

	path := config.ResolvePath(configPath)
	unknown, err := config.UnknownKeys(path)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		logger.Warn("Ignoring unknown config key", "key", key, "file", path)
	}
	return nil
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

func layout() paths.Layout {
	return paths.NewLayout(cfg.DBDir)
}

func openStore() (*registry.Store, error) {
	return registry.Open(layout(), registry.WithLogger(logger))
}

// printError writes err and, when its code has one, a hint
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := errors.Hint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
