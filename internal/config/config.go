package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DevSecretKey signs tokens when SECRET_KEY is not configured. Refused in production.
const DevSecretKey = "dev-secret-change-me"

type Config struct {
	Addr               string `mapstructure:"ADDR"`
	Env                string `mapstructure:"ENV"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	DBDriver           string `mapstructure:"DB_DRIVER"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	SecretKey          string `mapstructure:"SECRET_KEY"`
	TokenExpireMinutes int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	SeedUsers          bool   `mapstructure:"SEED_USERS"`
	PublicBaseURL      string `mapstructure:"PUBLIC_BASE_URL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "clinic.db?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	v.SetDefault("SECRET_KEY", DevSecretKey)
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("SEED_USERS", true)
	v.SetDefault("PUBLIC_BASE_URL", "")

	for _, key := range []string{
		"ADDR", "ENV", "LOG_LEVEL", "DB_DRIVER", "DATABASE_URL", "SECRET_KEY",
		"ACCESS_TOKEN_EXPIRE_MINUTES", "SEED_USERS", "PUBLIC_BASE_URL",
	} {
		_ = v.BindEnv(key)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be \"sqlite\" or \"postgres\", got %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.TokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.TokenExpireMinutes)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if !c.IsDev() && c.SecretKey == DevSecretKey {
		return fmt.Errorf("SECRET_KEY must be set outside development (ENV=%s)", c.Env)
	}
	return nil
}
