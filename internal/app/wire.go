package app

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos"
	httpH "github.com/rtb-12/StorySentinel-sub000/internal/http/handlers"
	httpMW "github.com/rtb-12/StorySentinel-sub000/internal/http/middleware"
	"github.com/rtb-12/StorySentinel-sub000/internal/observability"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/cache"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/sendgrid"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/story"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/yakoa"
	"github.com/rtb-12/StorySentinel-sub000/internal/services"
)

type Repos struct {
	IPAssets repos.IPAssetRepo
	Alerts   repos.AlertRepo
	Disputes repos.DisputeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		IPAssets: repos.NewIPAssetRepo(db, log),
		Alerts:   repos.NewAlertRepo(db, log),
		Disputes: repos.NewDisputeRepo(db, log),
	}
}

// Clients holds the optional upstreams. A nil interface means the API key
// was not configured and the dependent features report 503.
type Clients struct {
	Yakoa yakoa.Client
	Story story.Client
	Cache cache.Cache
	Mail  sendgrid.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if strings.TrimSpace(cfg.Yakoa.APIKey) != "" {
		c, err := yakoa.New(log, cfg.YakoaConfig())
		if err != nil {
			return Clients{}, fmt.Errorf("init yakoa client: %w", err)
		}
		out.Yakoa = c
	} else {
		log.Warn("YAKOA_API_KEY not set; monitoring disabled")
	}

	if strings.TrimSpace(cfg.Story.APIKey) != "" {
		c, err := story.New(log, cfg.StoryConfig())
		if err != nil {
			return Clients{}, fmt.Errorf("init story client: %w", err)
		}
		out.Story = c
	} else {
		log.Warn("STORY_API_KEY not set; chain lookups disabled")
	}

	if strings.TrimSpace(cfg.Mail.SendGridAPIKey) != "" {
		c, err := sendgrid.New(log, cfg.SendGridConfig())
		if err != nil {
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.Mail = c
	}

	out.Cache = cache.Noop{}
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		c, err := cache.NewRedis(log, cfg.CacheConfig())
		if err != nil {
			return Clients{}, fmt.Errorf("init redis cache: %w", err)
		}
		out.Cache = c
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}

type Services struct {
	Registration services.RegistrationService
	Monitoring   services.MonitoringService
	Disputes     services.DisputeService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	builder := services.NewAssetDataBuilder(log, cfg.Monitoring.PlatformName)
	notifier := services.NewEmailAlertNotifier(log, c.Mail, cfg.Mail.AlertRecipients)
	return Services{
		Registration: services.NewRegistrationService(log, r.IPAssets, c.Yakoa, c.Story, builder, metrics),
		Monitoring: services.NewMonitoringService(log, r.IPAssets, r.Alerts, c.Yakoa, c.Cache, services.MonitoringConfig{
			CacheTTL:       cfg.Monitoring.CacheTTL,
			RefreshWorkers: cfg.Monitoring.RefreshWorkers,
			Metrics:        metrics,
			Notifier:       notifier,
		}),
		Disputes: services.NewDisputeService(db, log, r.IPAssets, r.Alerts, r.Disputes, c.Story),
	}
}

type Handlers struct {
	Health  *httpH.HealthHandler
	IPAsset *httpH.IPAssetHandler
	Alert   *httpH.AlertHandler
	Dispute *httpH.DisputeHandler
	Utils   *httpH.UtilsHandler
}

func wireHandlers(log *logger.Logger, s Services, checks map[string]httpH.ReadinessCheck) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(checks),
		IPAsset: httpH.NewIPAssetHandler(log, s.Registration, s.Monitoring),
		Alert:   httpH.NewAlertHandler(s.Monitoring),
		Dispute: httpH.NewDisputeHandler(s.Disputes),
		Utils:   httpH.NewUtilsHandler(),
	}
}

func readinessChecks(db *gorm.DB, c Clients) map[string]httpH.ReadinessCheck {
	return map[string]httpH.ReadinessCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"cache": func(ctx context.Context) error {
			if c.Cache == nil {
				return nil
			}
			return c.Cache.Ping(ctx)
		},
	}
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if !cfg.Auth.Enabled {
		log.Warn("Auth disabled; mutating routes are open")
		return Middleware{}
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
			Secret:   cfg.Auth.Secret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		}),
	}
}
