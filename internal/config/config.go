package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPPort int `env:"HTTP_PORT" default:"8080"`

	// Database
	DatabaseDriver string `env:"DATABASE_DRIVER" default:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL" required:"true"`

	// Authentication
	JWTSecret string `env:"JWT_SECRET" required:"true"`

	// Redis Cache, empty URL disables caching and per-user locks
	RedisURL      string        `env:"REDIS_URL"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" default:"10m"`
	LockTTL       time.Duration `env:"LOCK_TTL" default:"10s"`
	LockWait      time.Duration `env:"LOCK_WAIT" default:"5s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"json"`

	// Gamification
	DefaultTimezone   string `env:"DEFAULT_TIMEZONE" default:"UTC"`
	StreakBonusPolicy string `env:"STREAK_BONUS_POLICY" default:"first_week"`

	// Scheduled XP resync, empty schedule disables the job
	ResyncSchedule string `env:"RESYNC_SCHEDULE" default:"0 3 * * *"`
	ResyncWorkers  int    `env:"RESYNC_WORKERS" default:"4"`

	// Request handling
	SubmitRatePerMinute int           `env:"SUBMIT_RATE_PER_MINUTE" default:"30"`
	SubmitBurst         int           `env:"SUBMIT_BURST" default:"5"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" default:"5s"`
	CORSOrigins         []string      `env:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// .env is optional, system env vars still apply
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{}

	loaders := []func() error{
		func() error { return loadEnvString(&config.GoEnv, "GO_ENV", "development") },
		func() error { return loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080) },

		func() error { return loadEnvString(&config.DatabaseDriver, "DATABASE_DRIVER", "postgres") },
		func() error { return loadEnvStringRequired(&config.DatabaseURL, "DATABASE_URL") },

		func() error { return loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET") },

		func() error { return loadEnvString(&config.RedisURL, "REDIS_URL", "") },
		func() error { return loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", "") },
		func() error { return loadEnvDuration(&config.CacheTTL, "CACHE_TTL", 10*time.Minute) },
		func() error { return loadEnvDuration(&config.LockTTL, "LOCK_TTL", 10*time.Second) },
		func() error { return loadEnvDuration(&config.LockWait, "LOCK_WAIT", 5*time.Second) },

		func() error { return loadEnvString(&config.LogLevel, "LOG_LEVEL", "info") },
		func() error { return loadEnvString(&config.LogFormat, "LOG_FORMAT", "json") },

		func() error { return loadEnvString(&config.DefaultTimezone, "DEFAULT_TIMEZONE", "UTC") },
		func() error { return loadEnvString(&config.StreakBonusPolicy, "STREAK_BONUS_POLICY", "first_week") },

		func() error { return loadEnvString(&config.ResyncSchedule, "RESYNC_SCHEDULE", "0 3 * * *") },
		func() error { return loadEnvInt(&config.ResyncWorkers, "RESYNC_WORKERS", 4) },

		func() error { return loadEnvInt(&config.SubmitRatePerMinute, "SUBMIT_RATE_PER_MINUTE", 30) },
		func() error { return loadEnvInt(&config.SubmitBurst, "SUBMIT_BURST", 5) },
		func() error { return loadEnvDuration(&config.RequestTimeout, "REQUEST_TIMEOUT", 5*time.Second) },
		func() error {
			return loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"})
		},
	}
	for _, load := range loaders {
		if err := load(); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value, ok := os.LookupEnv(key); ok {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validDrivers := []string{"postgres", "sqlite"}
	if !contains(validDrivers, c.DatabaseDriver) {
		errors = append(errors, fmt.Sprintf("DATABASE_DRIVER must be one of: %s", strings.Join(validDrivers, ", ")))
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("DEFAULT_TIMEZONE is not a known zone: %s", c.DefaultTimezone))
	}

	validPolicies := []string{"first_week", "every_week"}
	if !contains(validPolicies, c.StreakBonusPolicy) {
		errors = append(errors, fmt.Sprintf("STREAK_BONUS_POLICY must be one of: %s", strings.Join(validPolicies, ", ")))
	}

	if c.ResyncWorkers < 1 {
		errors = append(errors, "RESYNC_WORKERS must be at least 1")
	}
	if c.SubmitRatePerMinute < 1 || c.SubmitBurst < 1 {
		errors = append(errors, "SUBMIT_RATE_PER_MINUTE and SUBMIT_BURST must be positive")
	}
	if c.LockTTL <= c.RequestTimeout {
		errors = append(errors, "LOCK_TTL must be longer than REQUEST_TIMEOUT")
	}
	if c.LockWait <= 0 {
		errors = append(errors, "LOCK_WAIT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// Location resolves DefaultTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
