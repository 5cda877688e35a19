// Package config loads dfictl's settings from defaults, an optional
// YAML file, then environment variables, in that priority order —
// flags parsed by cobra/pflag in cmd/dfictl are applied last and win
// over all of these.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds dfictl's runtime settings.
type Config struct {
	RegistryDSN string `yaml:"registry_dsn"`
	Debug       bool   `yaml:"debug"`
	ExtScopeDir string `yaml:"ext_scope_dir"`
}

func defaults() *Config {
	return &Config{
		RegistryDSN: "dfictl.db",
		Debug:       false,
		ExtScopeDir: "",
	}
}

// Load builds a Config from defaults, then path (if non-empty and it
// exists), then environment variables (DFICTL_REGISTRY_DSN,
// DFICTL_DEBUG, DFICTL_EXT_SCOPE_DIR). godotenv.Load is attempted
// best-effort so a missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if v := os.Getenv("DFICTL_REGISTRY_DSN"); v != "" {
		cfg.RegistryDSN = v
	}
	if v := os.Getenv("DFICTL_EXT_SCOPE_DIR"); v != "" {
		cfg.ExtScopeDir = v
	}
	if v := os.Getenv("DFICTL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}

	return cfg, nil
}
