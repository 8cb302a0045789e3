package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos"
	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/normalization"
	"github.com/rtb-12/StorySentinel-sub000/internal/observability"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/apierr"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/story"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/yakoa"
	"github.com/rtb-12/StorySentinel-sub000/internal/validation"
)

type RegistrationService interface {
	// Validate normalizes and validates without side effects.
	Validate(ctx context.Context, raw map[string]any) (domain.RegistrationPayload, []validation.Violation)
	// Register records the asset and submits it for monitoring. Violations
	// are returned instead of an error when the payload is rejected.
	Register(ctx context.Context, raw map[string]any) (*domain.IPAsset, []validation.Violation, error)
	RegisterFromChain(ctx context.Context, r ChainRegistration) (*domain.IPAsset, []validation.Violation, error)
	ImportFromStory(ctx context.Context, ipID string) (*domain.IPAsset, []validation.Violation, error)
	Get(ctx context.Context, assetID string) (*domain.IPAsset, error)
	List(ctx context.Context, creatorID string, limit int) ([]*domain.IPAsset, error)
}

type registrationService struct {
	log     *logger.Logger
	assets  repos.IPAssetRepo
	yakoa   yakoa.Client
	story   story.Client
	builder *AssetDataBuilder
	metrics *observability.Metrics
}

// NewRegistrationService wires the service. yakoaClient and storyClient may
// be nil when the corresponding API is not configured.
func NewRegistrationService(log *logger.Logger, assets repos.IPAssetRepo, yakoaClient yakoa.Client, storyClient story.Client, builder *AssetDataBuilder, metrics *observability.Metrics) RegistrationService {
	return &registrationService{
		log:     log.With("service", "RegistrationService"),
		assets:  assets,
		yakoa:   yakoaClient,
		story:   storyClient,
		builder: builder,
		metrics: metrics,
	}
}

func (s *registrationService) Validate(ctx context.Context, raw map[string]any) (domain.RegistrationPayload, []validation.Violation) {
	return validation.Decode(raw)
}

func (s *registrationService) Register(ctx context.Context, raw map[string]any) (*domain.IPAsset, []validation.Violation, error) {
	payload, violations := validation.Decode(raw)
	if len(violations) > 0 {
		for _, v := range violations {
			s.metrics.IncViolation(v.Field)
		}
		s.log.Debug("Registration payload rejected", "violations", len(violations))
		return nil, violations, nil
	}
	asset, err := s.submit(ctx, payload)
	return asset, nil, err
}

func (s *registrationService) RegisterFromChain(ctx context.Context, r ChainRegistration) (*domain.IPAsset, []validation.Violation, error) {
	payload := s.builder.FromChainResult(r)
	if violations := validation.ValidateRegistrationPayload(payloadMap(payload)); len(violations) > 0 {
		return nil, violations, nil
	}
	asset, err := s.submit(ctx, payload)
	return asset, nil, err
}

func (s *registrationService) ImportFromStory(ctx context.Context, ipID string) (*domain.IPAsset, []validation.Violation, error) {
	if s.story == nil {
		return nil, nil, apierr.New(503, "story_unavailable", fmt.Errorf("story API not configured"))
	}
	start := time.Now()
	ip, err := s.story.GetIPAsset(ctx, ipID)
	s.metrics.ObserveUpstream("story", "get_ip_asset", err, time.Since(start))
	if errors.Is(err, story.ErrNotFound) {
		return nil, nil, apierr.NotFound("ip_asset_not_on_chain", err)
	}
	if err != nil {
		return nil, nil, apierr.Upstream("story_lookup_failed", err)
	}

	reg := ChainRegistration{
		ContractAddress: ip.TokenContract,
		TokenID:         ip.TokenID,
		CreatorWallet:   stringFrom(ip.NFTMetadata, "owner"),
		ChainID:         ip.ChainID,
		Metadata:        map[string]any{"ip_id": ip.IPID},
	}
	if name := stringFrom(ip.NFTMetadata, "name"); name != "" {
		reg.Metadata["title"] = name
	}
	if n, err := strconv.ParseInt(ip.BlockNumber, 10, 64); err == nil {
		reg.BlockNumber = n
	}
	if secs, err := strconv.ParseInt(ip.BlockTimestamp, 10, 64); err == nil {
		reg.Timestamp = time.Unix(secs, 0).UTC()
	}
	if img := stringFrom(ip.NFTMetadata, "imageUrl"); img != "" {
		reg.MediaURLs = []string{img}
	}
	return s.RegisterFromChain(ctx, reg)
}

func (s *registrationService) submit(ctx context.Context, payload domain.RegistrationPayload) (*domain.IPAsset, error) {
	mediaJSON, err := json.Marshal(payload.Media)
	if err != nil {
		return nil, fmt.Errorf("encode media: %w", err)
	}
	metaJSON, err := json.Marshal(payload.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if payload.Metadata == nil {
		metaJSON = []byte("{}")
	}

	asset, err := s.assets.Upsert(ctx, nil, &domain.IPAsset{
		AssetID:   payload.ID,
		CreatorID: payload.CreatorID,
		Title:     stringFrom(payload.Metadata, "title"),
		Media:     datatypes.JSON(mediaJSON),
		Metadata:  datatypes.JSON(metaJSON),
		Status:    domain.AssetStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("store asset: %w", err)
	}

	if s.yakoa == nil {
		s.log.Warn("Monitoring API not configured, asset left pending", "asset_id", asset.AssetID)
		return asset, nil
	}

	start := time.Now()
	token, err := s.yakoa.RegisterToken(ctx, payload)
	s.metrics.ObserveUpstream("yakoa", "register_token", err, time.Since(start))
	if err != nil {
		s.log.Error("Monitoring registration failed", "asset_id", asset.AssetID, "error", err)
		if uerr := s.assets.UpdateStatus(ctx, nil, asset.AssetID, domain.AssetStatusFailed, "", err.Error()); uerr != nil {
			s.log.Error("Could not mark asset failed", "asset_id", asset.AssetID, "error", uerr)
		}
		asset.Status = domain.AssetStatusFailed
		asset.LastError = err.Error()
		return asset, apierr.Upstream("monitoring_registration_failed", err)
	}

	tokenID := strings.TrimSpace(token.ID)
	if tokenID == "" {
		tokenID = asset.AssetID
	}
	if err := s.assets.UpdateStatus(ctx, nil, asset.AssetID, domain.AssetStatusRegistered, tokenID, ""); err != nil {
		return nil, fmt.Errorf("mark asset registered: %w", err)
	}
	asset.Status = domain.AssetStatusRegistered
	asset.YakoaTokenID = tokenID
	s.log.Info("Asset registered for monitoring", "asset_id", asset.AssetID, "media", len(payload.Media))
	return asset, nil
}

func (s *registrationService) Get(ctx context.Context, assetID string) (*domain.IPAsset, error) {
	id := validation.CanonicalAssetID(assetID)
	if !validation.IsValidAssetID(id) {
		return nil, apierr.BadRequest("invalid_asset_id", fmt.Errorf("invalid asset id %q", assetID))
	}
	asset, err := s.assets.GetByAssetID(ctx, nil, id)
	if errors.Is(err, repos.ErrAssetNotFound) {
		return nil, apierr.NotFound("asset_not_found", err)
	}
	return asset, err
}

func (s *registrationService) List(ctx context.Context, creatorID string, limit int) ([]*domain.IPAsset, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID != "" {
		creatorID = normalization.NormalizeCreatorID(creatorID)
		if !validation.IsValidCreatorID(creatorID) {
			return nil, apierr.BadRequest("invalid_creator_id", fmt.Errorf("invalid creator id %q", creatorID))
		}
	}
	return s.assets.ListByCreator(ctx, nil, creatorID, limit)
}

// payloadMap renders a typed payload into the shape the validator reads.
func payloadMap(p domain.RegistrationPayload) map[string]any {
	media := make([]any, 0, len(p.Media))
	for _, m := range p.Media {
		media = append(media, map[string]any{"media_id": m.MediaID, "hash": m.Hash, "url": m.URL})
	}
	return map[string]any{"id": p.ID, "creator_id": p.CreatorID, "media": media}
}

func stringFrom(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
