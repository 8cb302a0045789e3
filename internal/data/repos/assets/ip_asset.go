package assets

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	types "github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

var ErrNotFound = errors.New("ip asset not found")

type IPAssetRepo interface {
	// Upsert creates the asset or refreshes the registration fields of the
	// row with the same AssetID. The stored row is returned.
	Upsert(ctx context.Context, tx *gorm.DB, asset *types.IPAsset) (*types.IPAsset, error)
	GetByAssetID(ctx context.Context, tx *gorm.DB, assetID string) (*types.IPAsset, error)
	ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string, limit int) ([]*types.IPAsset, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, assetID, status, yakoaTokenID, lastError string) error
}

type ipAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIPAssetRepo(db *gorm.DB, baseLog *logger.Logger) IPAssetRepo {
	repoLog := baseLog.With("repo", "IPAssetRepo")
	return &ipAssetRepo{db: db, log: repoLog}
}

func (r *ipAssetRepo) Upsert(ctx context.Context, tx *gorm.DB, asset *types.IPAsset) (*types.IPAsset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if asset == nil || asset.AssetID == "" {
		return nil, fmt.Errorf("asset id required")
	}

	var stored types.IPAsset
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var existing types.IPAsset
		err := inner.Where("asset_id = ?", asset.AssetID).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := inner.Create(asset).Error; err != nil {
				return err
			}
			stored = *asset
			return nil
		}
		if err != nil {
			return err
		}
		if err := inner.Model(&existing).Updates(map[string]any{
			"creator_id": asset.CreatorID,
			"title":      asset.Title,
			"media":      asset.Media,
			"metadata":   asset.Metadata,
			"status":     asset.Status,
			"last_error": "",
		}).Error; err != nil {
			return err
		}
		return inner.Where("id = ?", existing.ID).Take(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ipAssetRepo) GetByAssetID(ctx context.Context, tx *gorm.DB, assetID string) (*types.IPAsset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.IPAsset
	err := transaction.WithContext(ctx).Where("asset_id = ?", assetID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, assetID)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ipAssetRepo) ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string, limit int) ([]*types.IPAsset, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.IPAsset{})
	if creatorID != "" {
		q = q.Where("creator_id = ?", creatorID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.IPAsset
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ipAssetRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, assetID, status, yakoaTokenID, lastError string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{
		"status":     status,
		"last_error": lastError,
	}
	if yakoaTokenID != "" {
		updates["yakoa_token_id"] = yakoaTokenID
	}
	res := transaction.WithContext(ctx).
		Model(&types.IPAsset{}).
		Where("asset_id = ?", assetID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, assetID)
	}
	return nil
}
