// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PlansConfig struct {
	FreeSlug string `yaml:"free_slug"`
}

type SchedulerConfig struct {
	ExpiryInterval    time.Duration `yaml:"expiry_interval"`
	NotifyInterval    time.Duration `yaml:"notify_interval"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	RunTimeout        time.Duration `yaml:"run_timeout"`
	ExpiringDays      int           `yaml:"expiring_days"`
	NotifyCycleTTL    time.Duration `yaml:"notify_cycle_ttl"`
	ReconcileLookback time.Duration `yaml:"reconcile_lookback"`
	Workers           int           `yaml:"workers"` // downgrade fan-out
}

type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url"` // empty disables real dispatch
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Plans     PlansConfig     `yaml:"plans"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Notify    NotifyConfig    `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Plans.FreeSlug == "" {
		cfg.Plans.FreeSlug = "free-member"
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Hour
	}
	if cfg.Scheduler.NotifyInterval <= 0 {
		cfg.Scheduler.NotifyInterval = 6 * time.Hour
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = 24 * time.Hour
	}
	if cfg.Scheduler.RunTimeout <= 0 {
		cfg.Scheduler.RunTimeout = 5 * time.Minute
	}
	if cfg.Scheduler.ExpiringDays <= 0 {
		cfg.Scheduler.ExpiringDays = 7
	}
	if cfg.Scheduler.NotifyCycleTTL <= 0 {
		cfg.Scheduler.NotifyCycleTTL = 20 * time.Hour
	}
	if cfg.Scheduler.ReconcileLookback <= 0 {
		cfg.Scheduler.ReconcileLookback = 24 * time.Hour
	}
	if cfg.Scheduler.Workers <= 0 {
		cfg.Scheduler.Workers = 4
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
