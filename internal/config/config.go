// Package config resolves runtime settings from flags, GOSHOP_* environment
// variables (optionally seeded from a .env file), a YAML file and defaults,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyDBPath     = "db_path"
	KeyLogLevel   = "log_level"
	KeyLogFormat  = "log_format"
	KeyListenAddr = "listen_addr"

	envPrefix      = "GOSHOP"
	configFileName = "goshop"
	configFileType = "yaml"
	defaultEnvFile = ".env"
)

var defaults = map[string]string{
	KeyDBPath:     "goshop.db",
	KeyLogLevel:   "info",
	KeyLogFormat:  "text",
	KeyListenAddr: "127.0.0.1:8080",
}

// FlagNames maps command-line flag names to config keys.
var FlagNames = map[string]string{
	"db":         KeyDBPath,
	"log-level":  KeyLogLevel,
	"log-format": KeyLogFormat,
	"listen":     KeyListenAddr,
}

type Config struct {
	DBPath     string
	LogLevel   string
	LogFormat  string
	ListenAddr string
}

type Options struct {
	// ConfigFile is an explicit YAML file. When empty, goshop.yaml is looked
	// up in the working directory and a missing file is not an error.
	ConfigFile string
	// EnvFile defaults to .env; a missing file is ignored.
	EnvFile string
	// Flags, when set, are bound by the names in FlagNames. Only flags the
	// user actually set override lower layers.
	Flags *pflag.FlagSet
}

func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = defaultEnvFile
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagNames {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		DBPath:     v.GetString(KeyDBPath),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		ListenAddr: v.GetString(KeyListenAddr),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db_path must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("config: listen_addr must not be empty")
	}
	return nil
}
