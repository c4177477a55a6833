// SPDX-License-Identifier: AGPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment variable prefix for debcrafter configuration.
const envPrefix = "DEBCRAFTER"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"spec-dir":    "spec_dir",
	"out-dir":     "out_dir",
	"include-ext": "include_ext",
	"verbose":     "verbose",
}

// Loader merges defaults, the config file, environment variables and flags.
// Precedence, highest first: changed flags, environment, file, defaults.
type Loader struct {
	v        *viper.Viper
	fileRead bool
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetDefault("spec_dir", DefaultSpecDir)
	v.SetDefault("out_dir", DefaultOutDir)
	v.SetDefault("include_ext", DefaultIncludeExt)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("spec_dir", "DEBCRAFTER_SPEC_DIR")
	_ = v.BindEnv("out_dir", "DEBCRAFTER_OUT_DIR")
	_ = v.BindEnv("include_ext", "DEBCRAFTER_INCLUDE_EXT")
	_ = v.BindEnv("verbose", "DEBCRAFTER_VERBOSE")

	return &Loader{v: v}
}

// BindFlags binds every known flag present in flags to its key.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads configFile, or DefaultConfigFile when it is empty. Only the
// default file may be absent.
func (l *Loader) Load(configFile string) (*Config, error) {
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}

	l.v.SetConfigFile(configFile)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	} else {
		l.fileRead = true
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg.WithDefaults(), nil
}

// ConfigFileUsed returns the file that was read, or "" if none was.
func (l *Loader) ConfigFileUsed() string {
	if !l.fileRead {
		return ""
	}
	return l.v.ConfigFileUsed()
}
