package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort          = 8080
	defaultMaintenanceInterval = time.Hour
)

// Config holds every runtime setting of the service.
type Config struct {
	DatabaseURL         string
	JWTSecretKey        string
	ServerPort          int
	AllowedOrigins      []string
	LogLevel            slog.Level
	MaintenanceInterval time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Enabled reports whether avatar storage credentials are configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		DatabaseURL:       get("DATABASE_URL"),
		JWTSecretKey:      get("JWT_SECRET_KEY"),
		R2AccountID:       get("R2_ACCOUNT_ID"),
		R2AccessKeyID:     get("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: get("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      get("R2_BUCKET_NAME"),
		R2PublicBaseURL:   get("R2_PUBLIC_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	cfg.ServerPort = defaultServerPort
	if portStr := get("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		if port <= 0 || port > 65535 {
			return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
		}
		cfg.ServerPort = port
	}

	cfg.MaintenanceInterval = defaultMaintenanceInterval
	if intervalStr := get("MAINTENANCE_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MAINTENANCE_INTERVAL environment variable: %w", err)
		}
		if interval < time.Minute {
			return nil, fmt.Errorf("MAINTENANCE_INTERVAL must be at least 1m, got %s", interval)
		}
		cfg.MaintenanceInterval = interval
	}

	cfg.LogLevel = slog.LevelInfo
	if levelStr := get("LOG_LEVEL"); levelStr != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	cfg.AllowedOrigins = []string{"*"}
	if originsStr := get("ALLOWED_ORIGINS"); originsStr != "" {
		var origins []string
		for _, o := range strings.Split(originsStr, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}

	return cfg, nil
}
