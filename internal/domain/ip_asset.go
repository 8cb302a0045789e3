package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AssetStatusPending    = "pending"
	AssetStatusRegistered = "registered"
	AssetStatusFailed     = "failed"
)

type IPAsset struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID   string    `gorm:"column:asset_id;not null;uniqueIndex" json:"asset_id"`
	CreatorID string    `gorm:"column:creator_id;not null;index" json:"creator_id"`
	Title     string    `gorm:"column:title" json:"title"`

	Media    datatypes.JSON `gorm:"column:media" json:"media"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata"`

	Status       string `gorm:"column:status;not null;index" json:"status"`
	YakoaTokenID string `gorm:"column:yakoa_token_id" json:"yakoa_token_id,omitempty"`
	LastError    string `gorm:"column:last_error" json:"last_error,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (IPAsset) TableName() string { return "ip_asset" }

func (a *IPAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
