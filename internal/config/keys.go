package config

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"fpm/internal/errors"
)

// ResolvePath returns explicit when set, else the default config location.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return DefaultConfigPath()
}

// UnknownKeys returns the dotted keys of the config file at path that no
// configuration field reads, sorted. Viper ignores such keys silently. A
// missing file has no unknown keys.
func UnknownKeys(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "failed to parse config "+path, err)
	}

	var keys []string
	for _, key := range meta.Undecoded() {
		keys = append(keys, key.String())
	}
	sort.Strings(keys)
	return keys, nil
}
