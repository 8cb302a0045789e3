package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rtb-12/StorySentinel-sub000/internal/db"
	"github.com/rtb-12/StorySentinel-sub000/internal/observability"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/cache"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/envutil"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/sendgrid"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/story"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/yakoa"
)

// ConfigFileEnv names an optional YAML file. Values from the file are
// applied first; environment variables override them.
const ConfigFileEnv = "STORYSENTINEL_CONFIG"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Yakoa      UpstreamConfig   `yaml:"yakoa"`
	Story      UpstreamConfig   `yaml:"story"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Mail       MailConfig       `yaml:"mail"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	ServiceName string   `yaml:"service_name"`
	Environment string   `yaml:"environment"`
	Version     string   `yaml:"version"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Mode     string `yaml:"mode"`
	HashSalt string `yaml:"hash_salt"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"ssl_mode"`
	Path       string `yaml:"path"`
	LogQueries bool   `yaml:"log_queries"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// UpstreamConfig covers both HTTP APIs. Network is the Yakoa network or the
// Story chain name.
type UpstreamConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	Network        string        `yaml:"network"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

type MonitoringConfig struct {
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	RefreshWorkers int           `yaml:"refresh_workers"`
	PlatformName   string        `yaml:"platform_name"`
}

// MailConfig drives alert emails. Both an API key and at least one
// recipient are needed for mail to go out.
type MailConfig struct {
	SendGridAPIKey  string   `yaml:"sendgrid_api_key"`
	SendGridBaseURL string   `yaml:"sendgrid_base_url"`
	FromEmail       string   `yaml:"from_email"`
	FromName        string   `yaml:"from_name"`
	AlertRecipients []string `yaml:"alert_recipients"`
	MaxRetries      int      `yaml:"max_retries"`
}

type TelemetryConfig struct {
	MetricsEnabled bool    `yaml:"metrics_enabled"`
	OtelEnabled    bool    `yaml:"otel_enabled"`
	OtelEndpoint   string  `yaml:"otel_endpoint"`
	OtelHeaders    string  `yaml:"otel_headers"`
	OtelInsecure   bool    `yaml:"otel_insecure"`
	SampleRatio    float64 `yaml:"sample_ratio"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8080", ServiceName: "storysentinel", Environment: "development"},
		Log:    LogConfig{Mode: "development"},
		Auth:   AuthConfig{Issuer: "storysentinel"},
		Database: DatabaseConfig{
			Driver: db.DriverPostgres,
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			Name:   "storysentinel",
			Path:   "storysentinel.db",
		},
		Redis:      RedisConfig{KeyPrefix: "storysentinel"},
		Yakoa:      UpstreamConfig{Network: "story-aeneid", Timeout: 15 * time.Second, MaxRetries: 3, InitialBackoff: 500 * time.Millisecond},
		Story:      UpstreamConfig{Network: "story-aeneid", Timeout: 15 * time.Second, MaxRetries: 2, InitialBackoff: 500 * time.Millisecond},
		Monitoring: MonitoringConfig{CacheTTL: 10 * time.Minute, RefreshWorkers: 4, PlatformName: "StorySentinel"},
		Telemetry:  TelemetryConfig{MetricsEnabled: true, SampleRatio: 0.1},
		Mail:       MailConfig{FromName: "StorySentinel", MaxRetries: 2},
	}
}

// LoadConfig builds the process configuration from defaults, the optional
// YAML file and the environment, in that order.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = envutil.String("PORT", cfg.Server.Port)
	cfg.Server.ServiceName = envutil.String("SERVICE_NAME", cfg.Server.ServiceName)
	cfg.Server.Environment = envutil.String("APP_ENV", cfg.Server.Environment)
	cfg.Server.Version = envutil.String("APP_VERSION", cfg.Server.Version)
	cfg.Server.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.Server.CORSOrigins)

	cfg.Log.Mode = envutil.String("LOG_MODE", cfg.Log.Mode)
	cfg.Log.HashSalt = envutil.String("LOG_HASH_SALT", cfg.Log.HashSalt)

	cfg.Auth.Enabled = envutil.Bool("AUTH_ENABLED", cfg.Auth.Enabled)
	cfg.Auth.Secret = envutil.String("JWT_SECRET_KEY", cfg.Auth.Secret)
	cfg.Auth.Issuer = envutil.String("JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.Audience = envutil.String("JWT_AUDIENCE", cfg.Auth.Audience)

	cfg.Database.Driver = envutil.String("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = envutil.String("POSTGRES_HOST", cfg.Database.Host)
	cfg.Database.Port = envutil.String("POSTGRES_PORT", cfg.Database.Port)
	cfg.Database.User = envutil.String("POSTGRES_USER", cfg.Database.User)
	cfg.Database.Password = envutil.String("POSTGRES_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = envutil.String("POSTGRES_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.Path = envutil.String("SQLITE_PATH", cfg.Database.Path)
	cfg.Database.LogQueries = envutil.Bool("DB_LOG_QUERIES", cfg.Database.LogQueries)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.KeyPrefix = envutil.String("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)

	applyUpstreamEnv("YAKOA", &cfg.Yakoa)
	applyUpstreamEnv("STORY", &cfg.Story)

	cfg.Monitoring.CacheTTL = envutil.Seconds("INFRINGEMENT_CACHE_TTL", cfg.Monitoring.CacheTTL)
	cfg.Monitoring.RefreshWorkers = envutil.Int("REFRESH_WORKERS", cfg.Monitoring.RefreshWorkers)
	cfg.Monitoring.PlatformName = envutil.String("PLATFORM_NAME", cfg.Monitoring.PlatformName)

	cfg.Telemetry.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.Telemetry.MetricsEnabled)
	cfg.Telemetry.OtelEnabled = envutil.Bool("OTEL_ENABLED", cfg.Telemetry.OtelEnabled)
	cfg.Telemetry.OtelEndpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OtelEndpoint)
	cfg.Telemetry.OtelHeaders = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Telemetry.OtelHeaders)
	cfg.Telemetry.OtelInsecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Telemetry.OtelInsecure)
	cfg.Telemetry.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Telemetry.SampleRatio)

	cfg.Mail.SendGridAPIKey = envutil.String("SENDGRID_API_KEY", cfg.Mail.SendGridAPIKey)
	cfg.Mail.SendGridBaseURL = envutil.String("SENDGRID_BASE_URL", cfg.Mail.SendGridBaseURL)
	cfg.Mail.FromEmail = envutil.String("SENDGRID_FROM_EMAIL", cfg.Mail.FromEmail)
	cfg.Mail.FromName = envutil.String("SENDGRID_FROM_NAME", cfg.Mail.FromName)
	cfg.Mail.AlertRecipients = envutil.List("ALERT_EMAIL_RECIPIENTS", cfg.Mail.AlertRecipients)
}

func applyUpstreamEnv(prefix string, u *UpstreamConfig) {
	u.APIKey = envutil.String(prefix+"_API_KEY", u.APIKey)
	u.BaseURL = envutil.String(prefix+"_BASE_URL", u.BaseURL)
	u.Network = envutil.String(prefix+"_NETWORK", u.Network)
	u.Timeout = envutil.Seconds(prefix+"_TIMEOUT_SECONDS", u.Timeout)
	u.MaxRetries = envutil.Int(prefix+"_MAX_RETRIES", u.MaxRetries)
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.Enabled && strings.TrimSpace(c.Auth.Secret) == "" {
		return fmt.Errorf("AUTH_ENABLED requires JWT_SECRET_KEY")
	}
	if strings.TrimSpace(c.Mail.SendGridAPIKey) != "" && strings.TrimSpace(c.Mail.FromEmail) == "" {
		return fmt.Errorf("SENDGRID_API_KEY requires SENDGRID_FROM_EMAIL")
	}
	if c.Monitoring.RefreshWorkers < 1 {
		return fmt.Errorf("refresh_workers must be >= 1")
	}
	return nil
}

func (c Config) LoggerConfig() logger.Config {
	return logger.Config{Mode: c.Log.Mode, Redact: true, HashSalt: c.Log.HashSalt}
}

func (c Config) DBConfig() db.Config {
	d := c.Database
	return db.Config{
		Driver:     d.Driver,
		Host:       d.Host,
		Port:       d.Port,
		User:       d.User,
		Password:   d.Password,
		Name:       d.Name,
		SSLMode:    d.SSLMode,
		Path:       d.Path,
		LogQueries: d.LogQueries,
	}
}

func (c Config) CacheConfig() cache.Config {
	return cache.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB, KeyPrefix: c.Redis.KeyPrefix}
}

func (c Config) YakoaConfig() yakoa.Config {
	u := c.Yakoa
	return yakoa.Config{APIKey: u.APIKey, BaseURL: u.BaseURL, Network: u.Network, Timeout: u.Timeout, MaxRetries: u.MaxRetries, InitialBackoff: u.InitialBackoff}
}

func (c Config) StoryConfig() story.Config {
	u := c.Story
	return story.Config{APIKey: u.APIKey, BaseURL: u.BaseURL, Chain: u.Network, Timeout: u.Timeout, MaxRetries: u.MaxRetries, InitialBackoff: u.InitialBackoff}
}

func (c Config) SendGridConfig() sendgrid.Config {
	m := c.Mail
	return sendgrid.Config{
		APIKey:           m.SendGridAPIKey,
		BaseURL:          m.SendGridBaseURL,
		DefaultFromEmail: m.FromEmail,
		DefaultFromName:  m.FromName,
		MaxRetries:       m.MaxRetries,
	}
}

func (c Config) OtelConfig() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Telemetry.OtelEnabled,
		ServiceName: c.Server.ServiceName,
		Environment: c.Server.Environment,
		Version:     c.Server.Version,
		Endpoint:    c.Telemetry.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.Telemetry.OtelHeaders),
		Insecure:    c.Telemetry.OtelInsecure,
		SampleRatio: c.Telemetry.SampleRatio,
	}
}
