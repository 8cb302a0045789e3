package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos"
	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/observability"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/apierr"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/cache"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/yakoa"
	"github.com/rtb-12/StorySentinel-sub000/internal/validation"
)

// InfringementReport is the monitoring view of one asset.
type InfringementReport struct {
	AssetID   string                      `json:"asset_id"`
	Status    string                      `json:"status"`
	Alerts    []*domain.InfringementAlert `json:"alerts"`
	CheckedAt time.Time                   `json:"checked_at"`
	Cached    bool                        `json:"cached"`
}

type MonitoringConfig struct {
	CacheTTL       time.Duration
	RefreshWorkers int
	Metrics        *observability.Metrics
	// Notifier, when set, hears about alerts stored for the first time.
	Notifier AlertNotifier
}

type MonitoringService interface {
	Infringements(ctx context.Context, assetID string) (*InfringementReport, error)
	// RefreshAll re-checks every asset, bypassing the cache. Individual
	// failures are logged and counted; the first error is returned after all
	// lookups finish.
	RefreshAll(ctx context.Context, assetIDs []string) (int, error)
	ListAlerts(ctx context.Context, filter repos.AlertFilter) ([]*domain.InfringementAlert, error)
	UpdateAlertStatus(ctx context.Context, id uuid.UUID, status string) (*domain.InfringementAlert, error)
}

type monitoringService struct {
	log    *logger.Logger
	assets repos.IPAssetRepo
	alerts repos.AlertRepo
	yakoa  yakoa.Client
	cache  cache.Cache
	cfg    MonitoringConfig
	now    func() time.Time
}

func NewMonitoringService(log *logger.Logger, assets repos.IPAssetRepo, alerts repos.AlertRepo, yakoaClient yakoa.Client, c cache.Cache, cfg MonitoringConfig) MonitoringService {
	if c == nil {
		c = cache.Noop{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.RefreshWorkers <= 0 {
		cfg.RefreshWorkers = 4
	}
	return &monitoringService{
		log:    log.With("service", "MonitoringService"),
		assets: assets,
		alerts: alerts,
		yakoa:  yakoaClient,
		cache:  c,
		cfg:    cfg,
		now:    time.Now,
	}
}

func infringementCacheKey(assetID string) string {
	return "infringements:" + assetID
}

func (s *monitoringService) Infringements(ctx context.Context, assetID string) (*InfringementReport, error) {
	id := validation.CanonicalAssetID(assetID)
	if !validation.IsValidAssetID(id) {
		return nil, apierr.BadRequest("invalid_asset_id", fmt.Errorf("invalid asset id %q", assetID))
	}

	var cached InfringementReport
	hit, err := s.cache.GetJSON(ctx, infringementCacheKey(id), &cached)
	if err != nil {
		s.log.Warn("Infringement cache read failed", "asset_id", id, "error", err)
	}
	s.cfg.Metrics.IncCacheLookup(hit)
	if hit {
		cached.Cached = true
		return &cached, nil
	}

	report, err := s.check(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, infringementCacheKey(id), report, s.cfg.CacheTTL); err != nil {
		s.log.Warn("Infringement cache write failed", "asset_id", id, "error", err)
	}
	return report, nil
}

func (s *monitoringService) check(ctx context.Context, assetID string) (*InfringementReport, error) {
	asset, err := s.assets.GetByAssetID(ctx, nil, assetID)
	if errors.Is(err, repos.ErrAssetNotFound) {
		return nil, apierr.NotFound("asset_not_found", err)
	}
	if err != nil {
		return nil, err
	}
	if s.yakoa == nil {
		return nil, apierr.New(503, "monitoring_unavailable", fmt.Errorf("monitoring API not configured"))
	}

	tokenID := asset.YakoaTokenID
	if tokenID == "" {
		tokenID = asset.AssetID
	}
	start := time.Now()
	token, err := s.yakoa.GetToken(ctx, tokenID)
	s.cfg.Metrics.ObserveUpstream("yakoa", "get_token", err, time.Since(start))
	if err != nil {
		return nil, apierr.Upstream("monitoring_lookup_failed", err)
	}

	detected := s.now().UTC()
	found := alertsFromToken(asset.AssetID, token, detected)
	stored, err := s.alerts.UpsertBySource(ctx, nil, found)
	if err != nil {
		return nil, fmt.Errorf("store alerts: %w", err)
	}

	status := ""
	if token.Infringements != nil {
		status = token.Infringements.Status
	}
	if len(stored) > 0 {
		s.log.Info("Infringements detected", "asset_id", asset.AssetID, "count", len(stored))
	}
	if fresh := newlyDetected(stored, detected); len(fresh) > 0 && s.cfg.Notifier != nil {
		s.cfg.Notifier.AlertsDetected(ctx, asset, fresh)
	}
	return &InfringementReport{
		AssetID:   asset.AssetID,
		Status:    status,
		Alerts:    stored,
		CheckedAt: detected,
	}, nil
}

// alertsFromToken flattens both infringement lists into one alert per source.
// Authorized external matches are licensed uses and are skipped. A source
// reported more than once keeps its highest confidence.
func alertsFromToken(assetID string, token *yakoa.Token, detected time.Time) []*domain.InfringementAlert {
	if token == nil || token.Infringements == nil {
		return nil
	}
	out := make([]*domain.InfringementAlert, 0,
		len(token.Infringements.InNetworkInfringements)+len(token.Infringements.ExternalInfringements))
	bySource := map[string]*domain.InfringementAlert{}
	add := func(src, platform string, confidence float64) {
		if prev, ok := bySource[src]; ok {
			if confidence > prev.Confidence {
				prev.Confidence = confidence
			}
			return
		}
		a := &domain.InfringementAlert{
			AssetID:    assetID,
			SourceURL:  src,
			Platform:   platform,
			Confidence: confidence,
			DetectedAt: detected,
		}
		bySource[src] = a
		out = append(out, a)
	}

	for _, inf := range token.Infringements.InNetworkInfringements {
		if inf.LicensedAt != "" {
			continue
		}
		src := strings.TrimSpace(inf.URL)
		if src == "" {
			src = "token:" + inf.TokenID
		}
		add(src, "in_network", inf.Confidence)
	}
	for _, inf := range token.Infringements.ExternalInfringements {
		if inf.Authorized {
			continue
		}
		src := strings.TrimSpace(inf.URL)
		if src == "" {
			src = "brand:" + inf.BrandID
		}
		add(src, inf.BrandName, inf.Confidence)
	}
	return out
}

// newlyDetected keeps alerts created by this check. Rows that already existed
// come back with their original detection time.
func newlyDetected(stored []*domain.InfringementAlert, detected time.Time) []*domain.InfringementAlert {
	var out []*domain.InfringementAlert
	for _, a := range stored {
		if a.DetectedAt.Equal(detected) {
			out = append(out, a)
		}
	}
	return out
}

func (s *monitoringService) RefreshAll(ctx context.Context, assetIDs []string) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.RefreshWorkers)

	results := make([]error, len(assetIDs))
	for i, raw := range assetIDs {
		i, raw := i, raw
		g.Go(func() error {
			id := validation.CanonicalAssetID(raw)
			report, err := s.check(gctx, id)
			if err != nil {
				s.log.Warn("Refresh failed", "asset_id", id, "error", err)
				results[i] = err
				return nil
			}
			if err := s.cache.SetJSON(gctx, infringementCacheKey(id), report, s.cfg.CacheTTL); err != nil {
				s.log.Warn("Infringement cache write failed", "asset_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	var first error
	for _, err := range results {
		if err == nil {
			ok++
		} else if first == nil {
			first = err
		}
	}
	return ok, first
}

func (s *monitoringService) ListAlerts(ctx context.Context, filter repos.AlertFilter) ([]*domain.InfringementAlert, error) {
	if filter.AssetID != "" {
		filter.AssetID = validation.CanonicalAssetID(filter.AssetID)
	}
	if filter.Status != "" && !domain.IsAlertStatus(filter.Status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown alert status %q", filter.Status))
	}
	return s.alerts.List(ctx, nil, filter)
}

func (s *monitoringService) UpdateAlertStatus(ctx context.Context, id uuid.UUID, status string) (*domain.InfringementAlert, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.IsAlertStatus(status) {
		return nil, apierr.BadRequest("invalid_status", fmt.Errorf("unknown alert status %q", status))
	}
	if err := s.alerts.UpdateStatus(ctx, nil, id, status); err != nil {
		if errors.Is(err, repos.ErrAlertNotFound) {
			return nil, apierr.NotFound("alert_not_found", err)
		}
		return nil, err
	}
	alert, err := s.alerts.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, infringementCacheKey(alert.AssetID)); err != nil {
		s.log.Warn("Infringement cache invalidation failed", "asset_id", alert.AssetID, "error", err)
	}
	return alert, nil
}
