package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the YAML file checked when CONFIG_PATH is unset.
const DefaultConfigFile = "dispatch.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
func Load() (*Config, error) {
	return LoadFrom(Get("CONFIG_PATH", DefaultConfigFile))
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an error.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := loadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// Get returns the environment value for key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays non-empty environment variables onto cfg.
func loadEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Oracle.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Oracle.Model, "ORACLE_MODEL")
	setString(&cfg.Oracle.RolesPath, "ROLES_PATH")
	setString(&cfg.Geocode.APIKey, "OPENCAGE_API_KEY")
	setString(&cfg.Geocode.BaseURL, "GEOCODE_BASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.SeedPath, "SEED_PATH")

	// A bare DATABASE_URL selects postgres unless a driver was named explicitly.
	if os.Getenv("DATABASE_URL") != "" && os.Getenv("DB_DRIVER") == "" {
		cfg.Database.Driver = "pgx"
	}

	if v := Get("ORACLE_TEMPERATURE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("ORACLE_TEMPERATURE: %w", err)
		}
		cfg.Oracle.Temperature = float32(f)
	}
	if v := Get("GEOCODE_CONCURRENCY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GEOCODE_CONCURRENCY: %w", err)
		}
		cfg.Geocode.Concurrency = n
	}
	if v := Get("GEOCODE_CACHE_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GEOCODE_CACHE_TTL: %w", err)
		}
		cfg.Geocode.CacheTTL = d
	}
	if v := Get("REDIS_DB", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}

	return nil
}

func setString(dst *string, key string) {
	if v := Get(key, ""); v != "" {
		*dst = v
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "pgx":
		if cfg.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the pgx driver")
		}
	case "sqlite":
		if cfg.Database.Path == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Geocode.Concurrency < 1 {
		return fmt.Errorf("geocode concurrency must be at least 1, got %d", cfg.Geocode.Concurrency)
	}
	if cfg.Server.Port == "" {
		return errors.New("port must be non-empty")
	}

	return nil
}
