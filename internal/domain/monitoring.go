package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusDismissed    = "dismissed"
	AlertStatusDisputed     = "disputed"
)

func IsAlertStatus(s string) bool {
	switch s {
	case AlertStatusOpen, AlertStatusAcknowledged, AlertStatusDismissed, AlertStatusDisputed:
		return true
	default:
		return false
	}
}

// InfringementAlert is a suspected copy of a registered asset reported by the
// monitoring API. One row per (asset, source URL).
type InfringementAlert struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID    string    `gorm:"column:asset_id;not null;uniqueIndex:idx_alert_asset_source" json:"asset_id"`
	SourceURL  string    `gorm:"column:source_url;not null;uniqueIndex:idx_alert_asset_source" json:"source_url"`
	Platform   string    `gorm:"column:platform" json:"platform"`
	Confidence float64   `gorm:"column:confidence" json:"confidence"`
	Status     string    `gorm:"column:status;not null;index" json:"status"`
	DetectedAt time.Time `gorm:"column:detected_at;index" json:"detected_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InfringementAlert) TableName() string { return "infringement_alert" }

func (a *InfringementAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

const (
	DisputeStatusDraft    = "draft"
	DisputeStatusFiled    = "filed"
	DisputeStatusResolved = "resolved"
	DisputeStatusRejected = "rejected"
)

var disputeTransitions = map[string][]string{
	DisputeStatusDraft: {DisputeStatusFiled, DisputeStatusRejected},
	DisputeStatusFiled: {DisputeStatusResolved, DisputeStatusRejected},
}

// CanTransitionDispute reports whether a dispute may move from one status to
// another. Resolved and rejected are terminal.
func CanTransitionDispute(from, to string) bool {
	for _, next := range disputeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Dispute struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID        string         `gorm:"column:asset_id;not null;index" json:"asset_id"`
	AlertID        *uuid.UUID     `gorm:"type:uuid;column:alert_id;index" json:"alert_id,omitempty"`
	TargetURL      string         `gorm:"column:target_url" json:"target_url"`
	Reason         string         `gorm:"column:reason;not null" json:"reason"`
	Evidence       datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	ChainDisputeID string         `gorm:"column:chain_dispute_id" json:"chain_dispute_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Dispute) TableName() string { return "dispute" }

func (d *Dispute) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
