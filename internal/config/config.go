package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Druid     DruidConfig     `yaml:"druid"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SparkPost SparkPostConfig `yaml:"sparkpost"`
	Sendgrid  SendgridConfig  `yaml:"sendgrid"`
	Mailgun   MailgunConfig   `yaml:"mailgun"`
	Report    ReportConfig    `yaml:"report"`
	Pulsation PulsationConfig `yaml:"pulsation"`
	ESPInfo   ESPInfoConfig   `yaml:"esp_info"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the configured host, defaulting to localhost.
func (c ServerConfig) GetHost() string {
	if c.Host == "" {
		return "localhost"
	}
	return c.Host
}

// DruidConfig holds the warehouse broker endpoints. Each region has its own
// broker; queries go to both and results are merged.
type DruidConfig struct {
	USBroker       string `yaml:"us_broker"`
	EUBroker       string `yaml:"eu_broker"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the query timeout as a duration.
func (c DruidConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the optional Redis cache settings. When disabled the
// ESP info cache falls back to in-process memory.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SparkPostConfig holds SparkPost API settings
type SparkPostConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a duration.
func (c SparkPostConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SendgridConfig holds SendGrid API settings
type SendgridConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a duration.
func (c SendgridConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MailgunConfig holds Mailgun API settings. Mailgun runs separate US and EU
// API endpoints; domains live in one or the other.
type MailgunConfig struct {
	APIKey         string `yaml:"api_key"`
	USBaseURL      string `yaml:"us_base_url"`
	EUBaseURL      string `yaml:"eu_base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a duration.
func (c MailgunConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReportConfig holds reporting options
type ReportConfig struct {
	TopN int `yaml:"top_n"`
}

// PulsationConfig holds daily monitoring pipeline settings
type PulsationConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// ESPInfoConfig holds account-info enrichment settings
type ESPInfoConfig struct {
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
}

// CacheTTL returns the account-info cache TTL as a duration.
func (c ESPInfoConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Druid.TimeoutSeconds == 0 {
		cfg.Druid.TimeoutSeconds = 120
	}
	if cfg.SparkPost.BaseURL == "" {
		cfg.SparkPost.BaseURL = "https://api.sparkpost.com/api/v1"
	}
	if cfg.SparkPost.TimeoutSeconds == 0 {
		cfg.SparkPost.TimeoutSeconds = 30
	}
	if cfg.Sendgrid.BaseURL == "" {
		cfg.Sendgrid.BaseURL = "https://api.sendgrid.com/v3"
	}
	if cfg.Sendgrid.TimeoutSeconds == 0 {
		cfg.Sendgrid.TimeoutSeconds = 30
	}
	if cfg.Mailgun.USBaseURL == "" {
		cfg.Mailgun.USBaseURL = "https://api.mailgun.net/v3"
	}
	if cfg.Mailgun.EUBaseURL == "" {
		cfg.Mailgun.EUBaseURL = "https://api.eu.mailgun.net/v3"
	}
	if cfg.Mailgun.TimeoutSeconds == 0 {
		cfg.Mailgun.TimeoutSeconds = 30
	}
	if cfg.Report.TopN == 0 {
		cfg.Report.TopN = 10
	}
	if cfg.Pulsation.RetentionDays == 0 {
		cfg.Pulsation.RetentionDays = 365
	}
	if cfg.ESPInfo.CacheTTLMinutes == 0 {
		cfg.ESPInfo.CacheTTLMinutes = 60
	}
}

// LoadFromEnv loads configuration from a YAML file with environment variable
// overrides. A .env file in the working directory is honored if present.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DRUID_US_BROKER"); v != "" {
		cfg.Druid.USBroker = v
	}
	if v := os.Getenv("DRUID_EU_BROKER"); v != "" {
		cfg.Druid.EUBroker = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SPARKPOST_API_KEY"); v != "" {
		cfg.SparkPost.APIKey = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		cfg.Sendgrid.APIKey = v
	}
	if v := os.Getenv("MAILGUN_API_KEY"); v != "" {
		cfg.Mailgun.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	return cfg, nil
}
