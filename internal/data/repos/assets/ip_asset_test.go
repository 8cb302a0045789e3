package assets

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos/testutil"
	types "github.com/rtb-12/StorySentinel-sub000/internal/domain"
)

func TestIPAssetRepo(t *testing.T) {
	t.Parallel()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewIPAssetRepo(db, testutil.Logger(t))
	ctx := context.Background()

	assetID := testutil.AssetID(1, 7)
	created, err := repo.Upsert(ctx, tx, &types.IPAsset{
		AssetID:   assetID,
		CreatorID: testutil.Creator(1),
		Title:     "first",
		Media:     datatypes.JSON([]byte(`[]`)),
		Metadata:  datatypes.JSON([]byte(`{}`)),
		Status:    types.AssetStatusPending,
	})
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}

	updated, err := repo.Upsert(ctx, tx, &types.IPAsset{
		AssetID:   assetID,
		CreatorID: testutil.Creator(1),
		Title:     "second",
		Media:     datatypes.JSON([]byte(`[]`)),
		Metadata:  datatypes.JSON([]byte(`{"k":"v"}`)),
		Status:    types.AssetStatusPending,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("Upsert must keep the row: got=%s want=%s", updated.ID, created.ID)
	}
	if updated.Title != "second" {
		t.Fatalf("Upsert: title not refreshed: %q", updated.Title)
	}

	if err := repo.UpdateStatus(ctx, tx, assetID, types.AssetStatusRegistered, assetID, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := repo.GetByAssetID(ctx, tx, assetID)
	if err != nil {
		t.Fatalf("GetByAssetID: %v", err)
	}
	if got.Status != types.AssetStatusRegistered || got.YakoaTokenID != assetID {
		t.Fatalf("GetByAssetID: unexpected row: %+v", got)
	}

	testutil.SeedIPAsset(t, ctx, tx, testutil.AssetID(2, 1), testutil.Creator(2))
	mine, err := repo.ListByCreator(ctx, tx, testutil.Creator(1), 0)
	if err != nil {
		t.Fatalf("ListByCreator: %v", err)
	}
	if len(mine) != 1 || mine[0].AssetID != assetID {
		t.Fatalf("ListByCreator: unexpected result: %+v", mine)
	}
	all, err := repo.ListByCreator(ctx, tx, "", 0)
	if err != nil {
		t.Fatalf("ListByCreator all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListByCreator all: got=%d want=2", len(all))
	}

	if _, err := repo.GetByAssetID(ctx, tx, testutil.AssetID(99, 1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByAssetID missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, tx, testutil.AssetID(99, 1), types.AssetStatusFailed, "", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateStatus missing: expected ErrNotFound, got %v", err)
	}
}
