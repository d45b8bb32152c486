// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Apify         ApifyConfig         `yaml:"apify"`
	Events        EventsConfig        `yaml:"events"`
	Probe         ProbeConfig         `yaml:"probe"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ApifyConfig defines the scrape task settings. Token and TaskID are
// usually supplied through ${APIFY_TOKEN} and ${APIFY_TASK_ID}.
type ApifyConfig struct {
	Token         string          `yaml:"token"`
	TaskID        string          `yaml:"task_id"`
	BaseURL       string          `yaml:"base_url"`
	WaitForFinish time.Duration   `yaml:"wait_for_finish"`
	Timeout       time.Duration   `yaml:"timeout"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines Apify run submission limits.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// EventsConfig defines the in-memory recent-events log.
type EventsConfig struct {
	Capacity int `yaml:"capacity"`
}

// ProbeConfig defines the periodic scrape task reachability check.
type ProbeConfig struct {
	Enabled  *bool         `yaml:"enabled"` // default: true
	Interval time.Duration `yaml:"interval"`
}

// IsEnabled reports whether probing is on.
func (p *ProbeConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord          DiscordConfig `yaml:"discord"`
	NotifyOnDegraded bool          `yaml:"notify_on_degraded"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, console
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyApifyDefaults(&cfg.Apify)
	applyEventsDefaults(&cfg.Events)
	applyProbeDefaults(&cfg.Probe)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 3000
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	// Scrape resolutions run inside the webhook request.
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 180 * time.Second
	}
}

func applyApifyDefaults(a *ApifyConfig) {
	if a.BaseURL == "" {
		a.BaseURL = "https://api.apify.com"
	}
	if a.WaitForFinish == 0 {
		a.WaitForFinish = 120 * time.Second
	}
	if a.Timeout == 0 {
		a.Timeout = a.WaitForFinish + 30*time.Second
	}
	applyRateLimitDefaults(&a.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 1.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 500
	}
}

func applyEventsDefaults(e *EventsConfig) {
	if e.Capacity == 0 {
		e.Capacity = 20
	}
}

func applyProbeDefaults(p *ProbeConfig) {
	if p.Interval == 0 {
		p.Interval = 5 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Apify.Token == "" {
		errs = append(errs, fmt.Errorf("apify.token is required"))
	}
	if cfg.Apify.TaskID == "" {
		errs = append(errs, fmt.Errorf("apify.task_id is required"))
	}
	if _, err := url.ParseRequestURI(cfg.Apify.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("apify.base_url is not a valid URL: %w", err))
	}
	if cfg.Apify.Timeout <= cfg.Apify.WaitForFinish {
		errs = append(errs, fmt.Errorf(
			"apify.timeout (%s) must exceed apify.wait_for_finish (%s)",
			cfg.Apify.Timeout, cfg.Apify.WaitForFinish,
		))
	}
	if cfg.Events.Capacity < 0 {
		errs = append(errs, fmt.Errorf("events.capacity must not be negative"))
	}
	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	return errors.Join(errs...)
}
