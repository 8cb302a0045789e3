package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos"
	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/apierr"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/story"
	"github.com/rtb-12/StorySentinel-sub000/internal/validation"
)

var ErrInvalidTransition = errors.New("invalid dispute status transition")

type CreateDisputeInput struct {
	AssetID   string         `json:"asset_id"`
	AlertID   *uuid.UUID     `json:"alert_id,omitempty"`
	TargetURL string         `json:"target_url"`
	Reason    string         `json:"reason"`
	Evidence  map[string]any `json:"evidence,omitempty"`
}

type DisputeService interface {
	Create(ctx context.Context, in CreateDisputeInput) (*domain.Dispute, error)
	List(ctx context.Context, assetID string) ([]*domain.Dispute, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, chainDisputeID string) (*domain.Dispute, error)
	ChainStatus(ctx context.Context, id uuid.UUID) (*story.Dispute, error)
}

type disputeService struct {
	db       *gorm.DB
	log      *logger.Logger
	assets   repos.IPAssetRepo
	alerts   repos.AlertRepo
	disputes repos.DisputeRepo
	story    story.Client
}

func NewDisputeService(db *gorm.DB, log *logger.Logger, assets repos.IPAssetRepo, alerts repos.AlertRepo, disputes repos.DisputeRepo, storyClient story.Client) DisputeService {
	return &disputeService{
		db:       db,
		log:      log.With("service", "DisputeService"),
		assets:   assets,
		alerts:   alerts,
		disputes: disputes,
		story:    storyClient,
	}
}

func (s *disputeService) Create(ctx context.Context, in CreateDisputeInput) (*domain.Dispute, error) {
	assetID := validation.CanonicalAssetID(in.AssetID)
	if !validation.IsValidAssetID(assetID) {
		return nil, apierr.BadRequest("invalid_asset_id", fmt.Errorf("invalid asset id %q", in.AssetID))
	}
	target := strings.TrimSpace(in.TargetURL)
	if target == "" && in.AlertID == nil {
		return nil, apierr.BadRequest("missing_target", fmt.Errorf("target_url or alert_id required"))
	}
	evidence := []byte("{}")
	if len(in.Evidence) > 0 {
		b, err := json.Marshal(in.Evidence)
		if err != nil {
			return nil, apierr.BadRequest("invalid_evidence", err)
		}
		evidence = b
	}

	var created *domain.Dispute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.assets.GetByAssetID(ctx, tx, assetID); err != nil {
			if errors.Is(err, repos.ErrAssetNotFound) {
				return apierr.NotFound("asset_not_found", err)
			}
			return err
		}
		if in.AlertID != nil {
			alert, err := s.alerts.GetByID(ctx, tx, *in.AlertID)
			if errors.Is(err, repos.ErrAlertNotFound) {
				return apierr.NotFound("alert_not_found", err)
			}
			if err != nil {
				return err
			}
			if alert.AssetID != assetID {
				return apierr.BadRequest("alert_asset_mismatch", fmt.Errorf("alert %s belongs to %s", alert.ID, alert.AssetID))
			}
			if target == "" {
				target = alert.SourceURL
			}
			if err := s.alerts.UpdateStatus(ctx, tx, alert.ID, domain.AlertStatusDisputed); err != nil {
				return err
			}
		}
		d, err := s.disputes.Create(ctx, tx, &domain.Dispute{
			AssetID:   assetID,
			AlertID:   in.AlertID,
			TargetURL: target,
			Reason:    strings.TrimSpace(in.Reason),
			Evidence:  datatypes.JSON(evidence),
			Status:    domain.DisputeStatusDraft,
		})
		if err != nil {
			return err
		}
		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Dispute drafted", "asset_id", assetID, "dispute_id", created.ID)
	return created, nil
}

func (s *disputeService) List(ctx context.Context, assetID string) ([]*domain.Dispute, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID != "" {
		assetID = validation.CanonicalAssetID(assetID)
	}
	return s.disputes.ListByAsset(ctx, nil, assetID)
}

func (s *disputeService) UpdateStatus(ctx context.Context, id uuid.UUID, status, chainDisputeID string) (*domain.Dispute, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	var updated *domain.Dispute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.disputes.GetByID(ctx, tx, id)
		if errors.Is(err, repos.ErrDisputeNotFound) {
			return apierr.NotFound("dispute_not_found", err)
		}
		if err != nil {
			return err
		}
		if !domain.CanTransitionDispute(current.Status, status) {
			return apierr.Conflict("invalid_transition",
				fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status))
		}
		if err := s.disputes.UpdateStatus(ctx, tx, id, status, strings.TrimSpace(chainDisputeID)); err != nil {
			return err
		}
		updated, err = s.disputes.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Dispute status changed", "dispute_id", id, "status", status)
	return updated, nil
}

func (s *disputeService) ChainStatus(ctx context.Context, id uuid.UUID) (*story.Dispute, error) {
	d, err := s.disputes.GetByID(ctx, nil, id)
	if errors.Is(err, repos.ErrDisputeNotFound) {
		return nil, apierr.NotFound("dispute_not_found", err)
	}
	if err != nil {
		return nil, err
	}
	if d.ChainDisputeID == "" {
		return nil, apierr.NotFound("dispute_not_on_chain", fmt.Errorf("dispute %s has no chain id", id))
	}
	if s.story == nil {
		return nil, apierr.New(503, "story_unavailable", fmt.Errorf("story API not configured"))
	}
	out, err := s.story.GetDispute(ctx, d.ChainDisputeID)
	if errors.Is(err, story.ErrNotFound) {
		return nil, apierr.NotFound("dispute_not_on_chain", err)
	}
	if err != nil {
		return nil, apierr.Upstream("story_lookup_failed", err)
	}
	return out, nil
}
