package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the top-level server configuration, read from a YAML file with
// TASKSPACE_* environment variable overrides.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `mapstructure:"addr"`

	// DBPath is the SQLite database file path.
	DBPath string `mapstructure:"db_path"`

	// AuthSecret signs and verifies bearer tokens. Required.
	AuthSecret string `mapstructure:"auth_secret"`

	// ShutdownTimeoutSec bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec"`
}

// Load reads configuration from the given YAML file path using Viper.
// A missing file is not an error; defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("addr", ":4000")
	v.SetDefault("db_path", "taskspace.db")
	v.SetDefault("auth_secret", "")
	v.SetDefault("shutdown_timeout_sec", 5)

	v.SetEnvPrefix("TASKSPACE")
	for _, key := range []string{"addr", "db_path", "auth_secret", "shutdown_timeout_sec"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("auth_secret is required (set TASKSPACE_AUTH_SECRET)")
	}

	return cfg, nil
}
