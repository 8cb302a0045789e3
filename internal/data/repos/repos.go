package repos

import (
	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos/assets"
	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos/monitoring"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"gorm.io/gorm"
)

type IPAssetRepo = assets.IPAssetRepo

type AlertRepo = monitoring.AlertRepo
type AlertFilter = monitoring.AlertFilter
type DisputeRepo = monitoring.DisputeRepo

var (
	ErrAssetNotFound   = assets.ErrNotFound
	ErrAlertNotFound   = monitoring.ErrAlertNotFound
	ErrDisputeNotFound = monitoring.ErrDisputeNotFound
)

func NewIPAssetRepo(db *gorm.DB, log *logger.Logger) IPAssetRepo {
	return assets.NewIPAssetRepo(db, log)
}

func NewAlertRepo(db *gorm.DB, log *logger.Logger) AlertRepo {
	return monitoring.NewAlertRepo(db, log)
}

func NewDisputeRepo(db *gorm.DB, log *logger.Logger) DisputeRepo {
	return monitoring.NewDisputeRepo(db, log)
}
