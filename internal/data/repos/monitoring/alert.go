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

var ErrAlertNotFound = errors.New("alert not found")

type AlertFilter struct {
	AssetID string
	Status  string
	Limit   int
}

type AlertRepo interface {
	// UpsertBySource records detections keyed by (asset, source URL). Known
	// rows get fresh confidence and platform but keep their triage status.
	UpsertBySource(ctx context.Context, tx *gorm.DB, alerts []*types.InfringementAlert) ([]*types.InfringementAlert, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.InfringementAlert, error)
	List(ctx context.Context, tx *gorm.DB, filter AlertFilter) ([]*types.InfringementAlert, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type alertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertRepo(db *gorm.DB, baseLog *logger.Logger) AlertRepo {
	return &alertRepo{db: db, log: baseLog.With("repo", "AlertRepo")}
}

func (r *alertRepo) UpsertBySource(ctx context.Context, tx *gorm.DB, alerts []*types.InfringementAlert) ([]*types.InfringementAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(alerts) == 0 {
		return []*types.InfringementAlert{}, nil
	}

	out := make([]*types.InfringementAlert, 0, len(alerts))
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		for _, a := range alerts {
			var existing types.InfringementAlert
			err := inner.Where("asset_id = ? AND source_url = ?", a.AssetID, a.SourceURL).Take(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if a.Status == "" {
					a.Status = types.AlertStatusOpen
				}
				if err := inner.Create(a).Error; err != nil {
					return err
				}
				out = append(out, a)
			case err != nil:
				return err
			default:
				existing.Confidence = a.Confidence
				existing.Platform = a.Platform
				if err := inner.Model(&existing).Updates(map[string]any{
					"confidence": a.Confidence,
					"platform":   a.Platform,
				}).Error; err != nil {
					return err
				}
				out = append(out, &existing)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *alertRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.InfringementAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.InfringementAlert
	err := transaction.WithContext(ctx).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *alertRepo) List(ctx context.Context, tx *gorm.DB, filter AlertFilter) ([]*types.InfringementAlert, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.InfringementAlert{})
	if filter.AssetID != "" {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var results []*types.InfringementAlert
	if err := q.Order("detected_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *alertRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.InfringementAlert{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	return nil
}
