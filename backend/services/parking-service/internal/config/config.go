package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	libconfig "parkwash/backend/libs/config"
)

const defaultPort = "8080"

// Config defines parking service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"PARKING_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"PARKING_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"PARKING_REDIS_ADDR"`
		Password string `yaml:"password" env:"PARKING_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"PARKING_REDIS_DB"`
	} `yaml:"redis"`
	JWT struct {
		Secret string `yaml:"secret" env:"PARKING_JWT_SECRET"`
	} `yaml:"jwt"`
	Billing struct {
		Timezone            string `yaml:"timezone" env:"PARKING_TIMEZONE"`
		DefaultHourlyRate   string `yaml:"defaultHourlyRate" env:"PARKING_DEFAULT_HOURLY_RATE"`
		DefaultDailyRate    string `yaml:"defaultDailyRate" env:"PARKING_DEFAULT_DAILY_RATE"`
		RateCacheSize       int    `yaml:"rateCacheSize" env:"PARKING_RATE_CACHE_SIZE"`
		SlotLockSeconds     int    `yaml:"slotLockSeconds" env:"PARKING_SLOT_LOCK_SECONDS"`
		LiveIntervalSeconds int    `yaml:"liveIntervalSeconds" env:"PARKING_LIVE_INTERVAL_SECONDS"`
	} `yaml:"billing"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Redis.Addr = "localhost:6379"
	cfg.Billing.Timezone = "UTC"
	cfg.Billing.DefaultHourlyRate = "50"
	cfg.Billing.DefaultDailyRate = "500"
	cfg.Billing.RateCacheSize = 32
	cfg.Billing.SlotLockSeconds = 10
	cfg.Billing.LiveIntervalSeconds = 5
	return cfg
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn required")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config: redis addr required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt secret required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, _, err := c.DefaultRates(); err != nil {
		return err
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SlotLockTTL bounds how long a slot reservation may be held during check-in.
func (c *Config) SlotLockTTL() time.Duration {
	if c.Billing.SlotLockSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Billing.SlotLockSeconds) * time.Second
}

// LiveInterval is the broadcast period of the live feed.
func (c *Config) LiveInterval() time.Duration {
	if c.Billing.LiveIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Billing.LiveIntervalSeconds) * time.Second
}

// Location resolves the billing timezone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Billing.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", name, err)
	}
	return loc, nil
}

// DefaultRates returns the hourly and daily rate used before any table is published.
func (c *Config) DefaultRates() (decimal.Decimal, decimal.Decimal, error) {
	hourly, err := decimal.NewFromString(strings.TrimSpace(c.Billing.DefaultHourlyRate))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("config: default hourly rate: %w", err)
	}
	daily, err := decimal.NewFromString(strings.TrimSpace(c.Billing.DefaultDailyRate))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("config: default daily rate: %w", err)
	}
	if hourly.IsNegative() || daily.IsNegative() {
		return decimal.Zero, decimal.Zero, errors.New("config: default rates must be non-negative")
	}
	if !hourly.Equal(hourly.Round(2)) || !daily.Equal(daily.Round(2)) {
		return decimal.Zero, decimal.Zero, errors.New("config: default rates must have at most 2 decimal places")
	}
	return hourly, daily, nil
}
