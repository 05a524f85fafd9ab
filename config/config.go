package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port             string        `yaml:"port"`
	GinMode          string        `yaml:"gin_mode"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	Database         Database      `yaml:"database"`
	JWTSecret        string        `yaml:"jwt_secret"`
	Timezone         string        `yaml:"timezone"`
	ImagesDir        string        `yaml:"images_dir"`
	Heartbeat        time.Duration `yaml:"sse_heartbeat"`
	OrderMaxAttempts int           `yaml:"order_max_attempts"`
	Reporting        Reporting     `yaml:"reporting"`
	RabbitMQURL      string        `yaml:"rabbitmq_url"`
	Scheduler        Scheduler     `yaml:"scheduler"`
}

type Database struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"`
}

type Reporting struct {
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	MaxAttempts int    `yaml:"max_attempts"`
	SiteName    string `yaml:"site_name"`
}

type Scheduler struct {
	Enabled      bool `yaml:"enabled"`
	CreditRefill bool `yaml:"credit_refill"`
}

func Default() *Config {
	return &Config{
		Port:           "5001",
		GinMode:        "debug",
		AllowedOrigins: []string{"http://localhost:3000"},
		Database: Database{
			Driver:   "postgres",
			DSN:      "host=localhost user=postgres password=postgres dbname=cafe port=5432 sslmode=disable",
			LogLevel: "warn",
		},
		JWTSecret:        "a-very-secret-key-that-should-be-in-env",
		Timezone:         "Asia/Tehran",
		ImagesDir:        "./images",
		Heartbeat:        25 * time.Second,
		OrderMaxAttempts: 3,
		Reporting: Reporting{
			Model:       "gemini-2.5-flash",
			MaxAttempts: 2,
			SiteName:    "Rasa Cafe",
		},
		Scheduler: Scheduler{Enabled: true},
	}
}

// Load reads .env (if any), then the optional YAML file at path, then
// environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Database.LogLevel, "DB_LOG_LEVEL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.Timezone, "TIMEZONE")
	setString(&c.ImagesDir, "IMAGES_DIR")
	setString(&c.Reporting.APIKey, "GEMINI_API_KEY")
	setString(&c.Reporting.Model, "REPORT_MODEL")
	setString(&c.Reporting.SiteName, "SITE_NAME")
	setString(&c.RabbitMQURL, "RABBITMQ_URL")

	if v := os.Getenv("SSE_HEARTBEAT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SSE_HEARTBEAT: %w", err)
		}
		c.Heartbeat = d
	}
	if err := setInt(&c.OrderMaxAttempts, "ORDER_MAX_ATTEMPTS"); err != nil {
		return err
	}
	if err := setInt(&c.Reporting.MaxAttempts, "REPORT_MAX_ATTEMPTS"); err != nil {
		return err
	}
	if err := setBool(&c.Scheduler.Enabled, "SCHEDULER_ENABLED"); err != nil {
		return err
	}
	return setBool(&c.Scheduler.CreditRefill, "CREDIT_REFILL_ENABLED")
}

func (c *Config) validate() error {
	if c.Heartbeat <= 0 {
		return errors.New("sse heartbeat must be positive")
	}
	if c.OrderMaxAttempts < 1 {
		return errors.New("order max attempts must be at least 1")
	}
	if c.Reporting.MaxAttempts < 1 {
		return errors.New("report max attempts must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the café's operational timezone used for order ids and timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Release() bool {
	return c.GinMode == "release"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
