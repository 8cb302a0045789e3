package db

import (
	"testing"

	"github.com/rtb-12/StorySentinel-sub000/internal/domain"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	t.Parallel()

	gdb, err := Open(logger.Nop(), Config{Driver: DriverSQLite, Path: "file:db_open_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, model := range []any{&domain.IPAsset{}, &domain.InfringementAlert{}, &domain.Dispute{}} {
		if !gdb.Migrator().HasTable(model) {
			t.Fatalf("missing table for %T", model)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(logger.Nop(), Config{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error")
	}
}
