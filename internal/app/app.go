package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rtb-12/StorySentinel-sub000/internal/db"
	apphttp "github.com/rtb-12/StorySentinel-sub000/internal/http"
	"github.com/rtb-12/StorySentinel-sub000/internal/observability"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewWithConfig(cfg.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.OtelConfig())

	theDB, err := db.Open(log, cfg.DBConfig())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	var metrics *observability.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, metrics)
	handlerset := wireHandlers(log, serviceset, readinessChecks(theDB, clients))
	middleware := wireMiddleware(log, cfg)

	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    otelServiceName(cfg),
		CORSOrigins:    cfg.Server.CORSOrigins,
		Metrics:        metrics,
		AuthMiddleware: middleware.Auth,
		IPAssetHandler: handlerset.IPAsset,
		AlertHandler:   handlerset.Alert,
		DisputeHandler: handlerset.Dispute,
		UtilsHandler:   handlerset.Utils,
		HealthHandler:  handlerset.Health,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// otelServiceName enables gin span instrumentation only when tracing is on.
func otelServiceName(cfg Config) string {
	if !cfg.Telemetry.OtelEnabled {
		return ""
	}
	return cfg.Server.ServiceName
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Server.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
