// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgREST = "postgrest"
	DriverSQLite    = "sqlite"

	AuthJWT  = "jwt"
	AuthNone = "none"
)

type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	Port        string `mapstructure:"port"`

	StoreDriver    string `mapstructure:"store_driver"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	SupabaseURL    string `mapstructure:"supabase_url"`
	SupabaseKey    string `mapstructure:"supabase_key"`
	StoreBatchSize int    `mapstructure:"store_batch_size"`

	DashboardWindowDays int    `mapstructure:"dashboard_window_days"`
	DashboardTimezone   string `mapstructure:"dashboard_timezone"`

	InsightWebhookAgentURL      string `mapstructure:"insight_webhook_agent_url"`
	InsightWebhookDepartmentURL string `mapstructure:"insight_webhook_department_url"`
	InsightWebhookReasonURL     string `mapstructure:"insight_webhook_reason_url"`
	InsightTimeoutSec           int    `mapstructure:"insight_timeout_sec"`
	InsightRatePerMin           int    `mapstructure:"insight_rate_per_min"`
	UseMockInsight              bool   `mapstructure:"use_mock_insight"`

	AuthMode      string `mapstructure:"auth_mode"`
	AuthJWTSecret string `mapstructure:"auth_jwt_secret"`
}

var defaults = map[string]any{
	"environment":                    "local",
	"log_level":                      "info",
	"port":                           "8080",
	"store_driver":                   DriverSQLite,
	"sqlite_path":                    "data/dashboard.db",
	"supabase_url":                   "",
	"supabase_key":                   "",
	"store_batch_size":               1000,
	"dashboard_window_days":          365,
	"dashboard_timezone":             "America/Sao_Paulo",
	"insight_webhook_agent_url":      "",
	"insight_webhook_department_url": "",
	"insight_webhook_reason_url":     "",
	"insight_timeout_sec":            120,
	"insight_rate_per_min":           6,
	"use_mock_insight":               false,
	"auth_mode":                      AuthJWT,
	"auth_jwt_secret":                "",
}

// Load reads envFiles (default ".env") into the process environment without
// overriding variables already set, then resolves every setting. Missing
// env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case DriverPostgREST:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for the postgrest store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.AuthMode {
	case AuthNone:
	case AuthJWT:
		if c.AuthJWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the timezone calendar days are evaluated in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DashboardTimezone)
	if err != nil {
		return nil, fmt.Errorf("DASHBOARD_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) InsightTimeout() time.Duration {
	return time.Duration(c.InsightTimeoutSec) * time.Second
}

// Window is how far back the dashboard loads interactions; 0 means no limit.
func (c *Config) Window() time.Duration {
	if c.DashboardWindowDays <= 0 {
		return 0
	}
	return time.Duration(c.DashboardWindowDays) * 24 * time.Hour
}
