package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the SQLite file; ":memory:" for an ephemeral database.
	Path string
	// LogQueries enables gorm's SQL logger.
	LogQueries bool
}

func (c Config) postgresDSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, sslMode)
}

// Open connects to the configured database and migrates the schema.
func Open(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	serviceLog := log.With("service", "Database")

	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}
	if cfg.LogQueries {
		gormCfg.Logger = gormLogger.Default.LogMode(gormLogger.Info)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		serviceLog.Info("Connecting to Postgres...", "host", cfg.Host, "db", cfg.Name)
		dialector = postgres.Open(cfg.postgresDSN())
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = "storysentinel.db"
		}
		serviceLog.Info("Opening SQLite...", "path", path)
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		serviceLog.Error("Failed to open database", "error", err)
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		serviceLog.Error("Auto migration failed", "error", err)
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return gdb, nil
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&domain.IPAsset{},
		&domain.InfringementAlert{},
		&domain.Dispute{},
	)
}
