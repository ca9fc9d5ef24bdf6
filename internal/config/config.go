package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"fpm/internal/errors"
	"fpm/internal/paths"
)

// CurrentVersion is the config schema version this build understands
const CurrentVersion = 1

// Config represents the complete fpm configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version" toml:"version"`
	DBDir   string `json:"dbDir" mapstructure:"dbDir" toml:"dbDir"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" mapstructure:"level" toml:"level"`
	// Format is "text" for the human format or "json"
	Format string `json:"format" mapstructure:"format" toml:"format"`
	// File enables logging to <dbDir>/logs/fpm.log in addition to stderr
	File       bool   `json:"file" mapstructure:"file" toml:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize" toml:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" toml:"maxBackups"`
}

// Environment variables that override the config file
const (
	EnvDBDir     = "FPM_DB_DIR"
	EnvLogLevel  = "FPM_LOG_LEVEL"
	EnvLogFormat = "FPM_LOG_FORMAT"
)

// DBDirFlag is the CLI flag bound to the dbDir key
const DBDirFlag = "db-dir"

var envBindings = map[string]string{
	"dbDir":          EnvDBDir,
	"logging.level":  EnvLogLevel,
	"logging.format": EnvLogFormat,
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

var validFormats = map[string]bool{"text": true, "json": true}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		DBDir:   paths.DefaultRoot(),
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       false,
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/fpm/config.toml, falling back
// to ~/.config/fpm/config.toml. It returns "" when neither can be resolved.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fpm", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "fpm", "config.toml")
}

// Load resolves the configuration. Precedence, highest first: the --db-dir
// flag when set on flags, environment variables, the config file, defaults.
//
// An explicit path must exist. When path is empty the default location is
// tried and a missing file yields the defaults.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("dbDir", defaults.DBDir)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.maxSize", defaults.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", defaults.Logging.MaxBackups)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.New(errors.ConfigInvalid, "failed to bind "+env, err)
		}
	}

	if flags != nil {
		if flag := flags.Lookup(DBDirFlag); flag != nil {
			if err := v.BindPFlag("dbDir", flag); err != nil {
				return nil, errors.New(errors.ConfigInvalid, "failed to bind --"+DBDirFlag, err)
			}
		}
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			_, notFound := err.(viper.ConfigFileNotFoundError)
			if explicit || !(notFound || os.IsNotExist(err)) {
				return nil, errors.New(errors.ConfigInvalid, "failed to read config "+path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to path as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := c.MarshalTOML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalTOML renders the configuration in the config file format
func (c *Config) MarshalTOML() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return configError("version", "unsupported config version")
	}
	if strings.TrimSpace(c.DBDir) == "" {
		return configError("dbDir", "must not be empty")
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return configError("logging.level", "unknown level "+c.Logging.Level)
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return configError("logging.format", "unknown format "+c.Logging.Format)
	}
	if c.Logging.MaxBackups < 0 {
		return configError("logging.maxBackups", "must not be negative")
	}
	return nil
}

func configError(field, message string) error {
	return errors.Newf(errors.ConfigInvalid, "config error in field '%s': %s", field, message).
		WithDetails(map[string]string{"field": field})
}
