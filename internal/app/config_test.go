package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port: got=%q want=%q", cfg.Server.Port, "8080")
	}
	if cfg.Monitoring.CacheTTL != 10*time.Minute || cfg.Monitoring.RefreshWorkers != 4 {
		t.Fatalf("monitoring defaults: got=%+v", cfg.Monitoring)
	}
	if cfg.YakoaConfig().Network != "story-aeneid" {
		t.Fatalf("yakoa network: got=%q", cfg.YakoaConfig().Network)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
server:
  port: "9090"
  cors_origins: ["https://dash.example"]
database:
  driver: sqlite
  path: /tmp/x.db
monitoring:
  cache_ttl: 30s
  refresh_workers: 8
yakoa:
  api_key: from-file
  timeout: 5s
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("PORT", "7070")
	t.Setenv("YAKOA_API_KEY", "")
	t.Setenv("REFRESH_WORKERS", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("env should override file: got=%q", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://dash.example" {
		t.Fatalf("cors origins: got=%v", cfg.Server.CORSOrigins)
	}
	if cfg.Database.Driver != "sqlite" || cfg.DBConfig().Path != "/tmp/x.db" {
		t.Fatalf("database: got=%+v", cfg.Database)
	}
	if cfg.Monitoring.CacheTTL != 30*time.Second || cfg.Monitoring.RefreshWorkers != 8 {
		t.Fatalf("monitoring: got=%+v", cfg.Monitoring)
	}
	if cfg.Yakoa.APIKey != "from-file" || cfg.Yakoa.Timeout != 5*time.Second {
		t.Fatalf("yakoa: got=%+v", cfg.Yakoa)
	}
	if cfg.Yakoa.MaxRetries != 3 {
		t.Fatalf("unset file keys keep defaults: got=%d", cfg.Yakoa.MaxRetries)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when auth enabled without secret")
	}

	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}

	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_DRIVER", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadConfigMail(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("AUTH_ENABLED", "")
	t.Setenv("SENDGRID_API_KEY", "sg-key")
	t.Setenv("SENDGRID_FROM_EMAIL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when sendgrid key set without from address")
	}

	t.Setenv("SENDGRID_FROM_EMAIL", "alerts@example.com")
	t.Setenv("ALERT_EMAIL_RECIPIENTS", "ops@example.com, legal@example.com")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Mail.AlertRecipients) != 2 || cfg.Mail.AlertRecipients[1] != "legal@example.com" {
		t.Fatalf("recipients: got=%v", cfg.Mail.AlertRecipients)
	}
	sg := cfg.SendGridConfig()
	if sg.APIKey != "sg-key" || sg.DefaultFromName != "StorySentinel" || sg.MaxRetries != 2 {
		t.Fatalf("sendgrid config: got=%+v", sg)
	}
}
