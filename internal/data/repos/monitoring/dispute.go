package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, d *types.Dispute) (*types.Dispute, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Dispute, error)
	ListByAsset(ctx context.Context, tx *gorm.DB, assetID string) ([]*types.Dispute, error)
	// UpdateStatus sets the status and, when non-empty, the on-chain dispute id.
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, chainDisputeID string) error
}

type disputeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDisputeRepo(db *gorm.DB, baseLog *logger.Logger) DisputeRepo {
	return &disputeRepo{db: db, log: baseLog.With("repo", "DisputeRepo")}
}

func (r *disputeRepo) Create(ctx context.Context, tx *gorm.DB, d *types.Dispute) (*types.Dispute, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *disputeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Dispute, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Dispute
	err := transaction.WithContext(ctx).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDisputeNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *disputeRepo) ListByAsset(ctx context.Context, tx *gorm.DB, assetID string) ([]*types.Dispute, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.Dispute{})
	if assetID != "" {
		q = q.Where("asset_id = ?", assetID)
	}
	var results []*types.Dispute
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *disputeRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, chainDisputeID string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{"status": status}
	if chainDisputeID != "" {
		updates["chain_dispute_id"] = chainDisputeID
	}
	res := transaction.WithContext(ctx).
		Model(&types.Dispute{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrDisputeNotFound, id)
	}
	return nil
}
