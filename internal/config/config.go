// Package config loads the layout engine configuration from a YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/makersimpulse/layoutengine/pkg/logger"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig         `yaml:"server"`
	Store   StoreConfig          `yaml:"store"`
	Logging logger.LoggingConfig `yaml:"logging"`
	Auth    AuthConfig           `yaml:"auth"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	RequestsPerSecond int      `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_service_key"`
}

// AuthConfig holds the bearer-token allow-list. Keys are tokens, values are
// client names used for rate limiting and logs.
type AuthConfig struct {
	Tokens map[string]string `yaml:"tokens"`
}

// Load reads config/layoutd.yaml if present, then applies environment
// overrides. A missing file is not an error; defaults plus environment make
// a complete configuration.
func Load() (Config, error) {
	return LoadFromPath(filepath.Join("config", "layoutd.yaml"))
}

// LoadFromPath loads the configuration from a specific file.
func LoadFromPath(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fall through to environment overrides.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			RequestsPerSecond: 25,
			Burst:             50,
			AllowedOrigins:    []string{"*"},
		},
		Store: StoreConfig{Driver: DriverMemory},
		Logging: logger.LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Store.SupabaseURL = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_KEY"); v != "" {
		cfg.Store.SupabaseKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func validate(cfg Config) error {
	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.Store.DatabaseURL == "" {
			return fmt.Errorf("store driver %q requires DATABASE_URL", DriverPostgres)
		}
	case DriverSupabase:
		if cfg.Store.SupabaseURL == "" || cfg.Store.SupabaseKey == "" {
			return fmt.Errorf("store driver %q requires SUPABASE_URL and SUPABASE_SERVICE_KEY", DriverSupabase)
		}
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	return nil
}
