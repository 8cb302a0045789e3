package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/rtb-12/StorySentinel-sub000/internal/domain"
)

// AssetID builds a canonical asset id whose address ends in n.
func AssetID(n int, tokenID int) string {
	hex := fmt.Sprintf("%x", n)
	return "0x" + strings.Repeat("0", 40-len(hex)) + hex + fmt.Sprintf(":%d", tokenID)
}

func Creator(n int) string {
	hex := fmt.Sprintf("%x", n)
	return "0x" + strings.Repeat("c", 40-len(hex)) + hex
}

func SeedIPAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, assetID, creatorID string) *types.IPAsset {
	tb.Helper()
	a := &types.IPAsset{
		AssetID:   assetID,
		CreatorID: creatorID,
		Title:     "asset",
		Media:     datatypes.JSON([]byte("[]")),
		Metadata:  datatypes.JSON([]byte("{}")),
		Status:    types.AssetStatusRegistered,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed ip asset: %v", err)
	}
	return a
}

func SeedAlert(tb testing.TB, ctx context.Context, tx *gorm.DB, assetID, sourceURL string) *types.InfringementAlert {
	tb.Helper()
	a := &types.InfringementAlert{
		AssetID:    assetID,
		SourceURL:  sourceURL,
		Platform:   "web",
		Confidence: 0.5,
		Status:     types.AlertStatusOpen,
		DetectedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed alert: %v", err)
	}
	return a
}
