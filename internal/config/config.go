// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Auth modes selectable at startup.
const (
	ModeLocal     = "local"
	ModeFederated = "federated"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	AuthMode         string `mapstructure:"AUTH_MODE"`
	JWTSecret        string `mapstructure:"JWT_SECRET"`
	IDPURL           string `mapstructure:"IDP_URL"`
	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_KEY"`
	StorageBucket    string `mapstructure:"STORAGE_BUCKET"`
	StorageUseSSL    bool   `mapstructure:"STORAGE_USE_SSL"`
	Port             string `mapstructure:"PORT"`
	DBHost           string `mapstructure:"DB_HOST"`
	DBPort           string `mapstructure:"DB_PORT"`
	DBUser           string `mapstructure:"DB_USER"`
	DBPassword       string `mapstructure:"DB_PASSWORD"`
	DBName           string `mapstructure:"DB_NAME"`
	DBSSLMode        string `mapstructure:"DB_SSLMODE"`
	AllowedOrigins   string `mapstructure:"ALLOWED_ORIGINS"`
	Env              string `mapstructure:"APP_ENV"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment variables win either way.
	_ = viper.ReadInConfig()

	viper.SetDefault("AUTH_MODE", ModeLocal)
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "slotvote")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("STORAGE_BUCKET", "avatars")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("APP_ENV", "development")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.AuthMode = strings.ToLower(strings.TrimSpace(config.AuthMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Federated returns true when the process validates tokens against the
// external identity provider.
func (c *Config) Federated() bool {
	return c.AuthMode == ModeFederated
}

// Validate ensures that required configuration values are present for the
// active auth mode. Missing mode-required configuration is a startup error,
// never a runtime one.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.AuthMode {
	case ModeLocal:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in local mode")
		}
	case ModeFederated:
		if c.IDPURL == "" {
			return errors.New("IDP_URL is required in federated mode")
		}
		if c.StorageEndpoint == "" || c.StorageAccessKey == "" || c.StorageSecretKey == "" {
			return errors.New("STORAGE_ENDPOINT, STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required in federated mode")
		}
		if c.StorageBucket == "" {
			return errors.New("STORAGE_BUCKET is required in federated mode")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", ModeLocal, ModeFederated, c.AuthMode)
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.AuthMode == ModeLocal && len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
	}

	return nil
}
