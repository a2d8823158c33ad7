package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config defines energy service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"ENERGY_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"ENERGY_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"ENERGY_REDIS_ADDR"`
		Password string `yaml:"password" env:"ENERGY_REDIS_PASSWORD"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret" env:"ENERGY_JWT_SECRET"`
	} `yaml:"auth"`
	Sampling struct {
		// Interval between sensor readings, e.g. "5m" or "10s".
		Interval string `yaml:"interval" env:"ENERGY_SAMPLING_INTERVAL"`
	} `yaml:"sampling"`
}

// Load configuration from YAML file and environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8085"
	cfg.Sampling.Interval = "5m"

	if err := hydrate(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if _, err := cfg.SamplingInterval(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SamplingInterval parses the configured interval between readings.
func (c *Config) SamplingInterval() (time.Duration, error) {
	raw := strings.TrimSpace(c.Sampling.Interval)
	if raw == "" {
		raw = "5m"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: parse sampling interval: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("config: sampling interval must be positive")
	}
	return d, nil
}
