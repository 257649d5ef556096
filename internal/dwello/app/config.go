package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/dwello/pkg/httpx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`    // Optional: seeding is skipped when empty
	Password string `yaml:"password"` // Optional: generated and logged once when empty
}

type Config struct {
	DBDriver         string        `yaml:"db_driver"`          // sqlite or postgres (default: sqlite)
	DatabaseFile     string        `yaml:"database_file"`      // SQLite path (default: ./dwello.db)
	DatabaseURL      string        `yaml:"database_url"`       // Required for postgres
	DBMaxOpenConns   int           `yaml:"db_max_open_conns"`  // Pool size (default: 10)
	DBAcquireTimeout time.Duration `yaml:"db_acquire_timeout"` // Wait for a pooled connection (default: 5s)

	PepperFile string `yaml:"pepper_file"` // Generated on first boot (default: ./pepper)
	RedisURL   string `yaml:"redis_url"`   // Optional: shared login throttle, in memory when empty

	Admin AdminConfig `yaml:"admin"`

	LoginMaxFailures   int           `yaml:"login_max_failures"`   // default: 10
	LoginFailureWindow time.Duration `yaml:"login_failure_window"` // default: 15m

	HousekeepingSchedule string `yaml:"housekeeping_schedule"` // cron spec (default: @every 1h)

	Env                 string        `yaml:"env"`                   // dev, staging, prod (default: dev)
	LogLevel            string        `yaml:"log_level"`             // debug, info, warn, error (default: info)
	LogFormat           string        `yaml:"log_format"`            // json, text (default: json)
	Port                int           `yaml:"port"`                  // default: 8080
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period"` // default: 10s
}

func defaultConfig() Config {
	return Config{
		DBDriver:             DriverSQLite,
		DatabaseFile:         "dwello.db",
		DBMaxOpenConns:       10,
		DBAcquireTimeout:     5 * time.Second,
		PepperFile:           "pepper",
		Admin:                AdminConfig{Name: "admin"},
		LoginMaxFailures:     10,
		LoginFailureWindow:   15 * time.Minute,
		HousekeepingSchedule: "@every 1h",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
	}
}

// LoadConfig layers defaults, an optional YAML file named by
// DWELLO_CONFIG_FILE and the environment, in that order. A .env file in the
// working directory is loaded first without overriding the real environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaultConfig()
	if path := os.Getenv("DWELLO_CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.DBDriver = getEnvOrDefault("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseFile = getEnvOrDefault("DATABASE_FILE", cfg.DatabaseFile)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBMaxOpenConns = getEnvIntOrDefault("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBAcquireTimeout = getEnvDurationOrDefault("DB_ACQUIRE_TIMEOUT", cfg.DBAcquireTimeout)
	cfg.PepperFile = getEnvOrDefault("PEPPER_FILE", cfg.PepperFile)
	cfg.RedisURL = getEnvOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.Admin.Name = getEnvOrDefault("DWELLO_ADMIN_NAME", cfg.Admin.Name)
	cfg.Admin.Email = getEnvOrDefault("DWELLO_ADMIN_EMAIL", cfg.Admin.Email)
	cfg.Admin.Password = getEnvOrDefault("DWELLO_ADMIN_PASSWORD", cfg.Admin.Password)
	cfg.LoginMaxFailures = getEnvIntOrDefault("LOGIN_MAX_FAILURES", cfg.LoginMaxFailures)
	cfg.LoginFailureWindow = getEnvDurationOrDefault("LOGIN_FAILURE_WINDOW", cfg.LoginFailureWindow)
	cfg.HousekeepingSchedule = getEnvOrDefault("HOUSEKEEPING_SCHEDULE", cfg.HousekeepingSchedule)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)

	httpx.LoadRateLimitProfiles()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return errors.New("DATABASE_FILE is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
