// Package config loads the agiledecrypt settings.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables with the AGILEDECRYPT_ prefix, command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

const (
	// FileName is the config file base name, without extension.
	FileName = "agiledecrypt"
	// EnvPrefix is prepended to environment variable names.
	EnvPrefix = "AGILEDECRYPT"
)

// Config keys. Flags bound with BindFlags must use the same names with
// "_" replaced by "-".
const (
	KeyWorkers         = "workers"
	KeyVerifyPassword  = "verify_password"
	KeyVerifyIntegrity = "verify_integrity"
	KeyDebug           = "debug"
	KeyQuiet           = "quiet"
)

// Config holds the settings that can come from file, environment or flags.
type Config struct {
	Workers         int  `mapstructure:"workers"`
	VerifyPassword  bool `mapstructure:"verify_password"`
	VerifyIntegrity bool `mapstructure:"verify_integrity"`
	Debug           bool `mapstructure:"debug"`
	Quiet           bool `mapstructure:"quiet"`
}

// Loader wraps a private viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader with defaults, search paths and environment
// binding set up. "configFile" overrides the search when not empty.
func NewLoader(configFile string) *Loader {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/." + FileName)
		v.AddConfigPath("/etc/" + FileName)
	}

	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyVerifyPassword, false)
	v.SetDefault(KeyVerifyIntegrity, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyQuiet, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlags binds every flag in "fs" whose name matches a config key.
// Only flags the user actually set override the lower layers.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.Replace(f.Name, "-", "_", -1)
		if !isKnownKey(key) {
			return
		}
		if e := l.v.BindPFlag(key, f); e != nil && err == nil {
			err = e
		}
	})
	return err
}

func isKnownKey(key string) bool {
	switch key {
	case KeyWorkers, KeyVerifyPassword, KeyVerifyIntegrity, KeyDebug, KeyQuiet:
		return true
	}
	return false
}

// Load reads the config file, if there is one, and returns the merged
// settings. A missing config file is not an error, a broken one is.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		tlog.Debug.Printf("config: no config file found, using defaults")
	} else {
		tlog.Debug.Printf("config: using %s", l.v.ConfigFileUsed())
	}
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if c.Workers < 0 {
		return nil, fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	return &c, nil
}

// ConfigFileUsed returns the path of the config file that was read, or "".
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
