package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Reminders RemindersConfig `yaml:"reminders"`
}

type TelegramConfig struct {
	Token         string `yaml:"token"`
	OwnerID       int64  `yaml:"owner_id"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the SQLite database file (sqlite driver only).
	Path string `yaml:"path"`
	// DSN is the Postgres connection string (postgres driver only).
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type RemindersConfig struct {
	Timezone        string `yaml:"timezone"`
	GreetingHour    int    `yaml:"greeting_hour"`
	GreetingMinute  int    `yaml:"greeting_minute"`
	SnoozeMinutes   int    `yaml:"snooze_minutes"`
	StartupGreeting bool   `yaml:"startup_greeting"`
}

// MigrateDSN returns the connection URL the migration runner expects for the
// configured driver.
func (d DatabaseConfig) MigrateDSN() string {
	if d.Driver == "postgres" {
		return d.DSN
	}
	return "sqlite://" + d.Path
}

// Location resolves the configured timezone.
func (r RemindersConfig) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

// SnoozeAfter returns the snooze re-reminder delay.
func (r RemindersConfig) SnoozeAfter() time.Duration {
	return time.Duration(r.SnoozeMinutes) * time.Minute
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix GYMBOT_ and underscore-separated paths:
//
//	GYMBOT_TELEGRAM_TOKEN, GYMBOT_TELEGRAM_OWNER_ID, GYMBOT_TELEGRAM_WEBHOOK_SECRET,
//	GYMBOT_DB_DRIVER, GYMBOT_DB_PATH, GYMBOT_DB_DSN,
//	GYMBOT_SERVER_HOST, GYMBOT_SERVER_PORT, GYMBOT_SERVER_API_KEY,
//	GYMBOT_OPENAI_API_KEY, GYMBOT_OPENAI_MODEL,
//	GYMBOT_TIMEZONE
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/gymbot.db",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Reminders: RemindersConfig{
			Timezone:        "America/Los_Angeles",
			GreetingHour:    8,
			GreetingMinute:  0,
			SnoozeMinutes:   60,
			StartupGreeting: true,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GYMBOT_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("GYMBOT_TELEGRAM_OWNER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.OwnerID = id
		}
	}
	if v := os.Getenv("GYMBOT_TELEGRAM_WEBHOOK_SECRET"); v != "" {
		cfg.Telegram.WebhookSecret = v
	}
	if v := os.Getenv("GYMBOT_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("GYMBOT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GYMBOT_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("GYMBOT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GYMBOT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GYMBOT_SERVER_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("GYMBOT_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("GYMBOT_OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("GYMBOT_TIMEZONE"); v != "" {
		cfg.Reminders.Timezone = v
	}
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if c.Telegram.OwnerID == 0 {
		return fmt.Errorf("telegram.owner_id is required")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Reminders.Timezone == "" {
		return fmt.Errorf("reminders.timezone is required")
	}
	if c.Reminders.GreetingHour < 0 || c.Reminders.GreetingHour > 23 {
		return fmt.Errorf("reminders.greeting_hour must be 0-23")
	}
	if c.Reminders.GreetingMinute < 0 || c.Reminders.GreetingMinute > 59 {
		return fmt.Errorf("reminders.greeting_minute must be 0-59")
	}
	if c.Reminders.SnoozeMinutes <= 0 {
		return fmt.Errorf("reminders.snooze_minutes must be positive")
	}
	return nil
}
