package config

import "time"

// Config is the process configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Oracle   Oracle   `yaml:"oracle"`
	Geocode  Geocode  `yaml:"geocode"`
	Redis    Redis    `yaml:"redis"`
	Log      Log      `yaml:"log"`
	SeedPath string   `yaml:"seed_path"`
}

type Server struct {
	Port              string        `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	// Negotiation runs make up to 21 sequential oracle calls.
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type Database struct {
	// "pgx" or "sqlite".
	Driver string `yaml:"driver"`
	// Postgres DSN, used when Driver is "pgx".
	URL string `yaml:"url"`
	// SQLite file, used when Driver is "sqlite".
	Path string `yaml:"path"`
}

// DSN returns the connection string for the configured driver.
func (d Database) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return d.URL
}

type Oracle struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	// Optional YAML file overriding the built-in role instructions.
	RolesPath string `yaml:"roles_path"`
}

type Geocode struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Concurrency int           `yaml:"concurrency"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	// Bytes of in-process cache in front of redis or SQL.
	MemoryCacheBytes int64 `yaml:"memory_cache_bytes"`
}

type Redis struct {
	// Empty disables redis; the SQL geocode cache is used instead.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:              "8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
		Database: Database{
			Driver: "sqlite",
			Path:   "data/app.db",
		},
		Oracle: Oracle{
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
		},
		Geocode: Geocode{
			BaseURL:          "https://api.opencagedata.com",
			Concurrency:      4,
			CacheTTL:         30 * 24 * time.Hour,
			MemoryCacheBytes: 8 << 20,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}
