package override

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
)

// gormLinkLoader satisfies linkLoader without dragging the sync link
// package into the test, which would cycle back into this one.
type gormLinkLoader struct {
	conn *gorm.DB
}

func (l *gormLinkLoader) FindLink(ctx context.Context, id uuid.UUID) (*models.BranchSyncLink, error) {
	var row models.BranchSyncLink
	if err := l.conn.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func setupOverrideTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS branch_sync_links (
  id TEXT PRIMARY KEY,
  location_id TEXT NOT NULL,
  master_catalog_id TEXT NOT NULL,
  menu_id TEXT NOT NULL,
  synced_version INTEGER NOT NULL DEFAULT 0,
  sync_mode TEXT NOT NULL DEFAULT 'manual',
  last_synced_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS branch_overrides (
  id TEXT PRIMARY KEY,
  branch_sync_link_id TEXT NOT NULL,
  master_item_id TEXT NOT NULL,
  price_override NUMERIC,
  availability_override INTEGER,
  price_locked INTEGER NOT NULL DEFAULT 0,
  availability_locked INTEGER NOT NULL DEFAULT 0,
  fully_locked INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_branch_overrides_link_item ON branch_overrides (branch_sync_link_id, master_item_id);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newOverrideService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn := setupOverrideTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), &gormLinkLoader{conn: conn})
	require.NoError(t, err)
	return svc, conn
}

func seedLink(t *testing.T, conn *gorm.DB) uuid.UUID {
	t.Helper()
	row := models.BranchSyncLink{
		ID:              uuid.New(),
		LocationID:      uuid.New(),
		MasterCatalogID: uuid.New(),
		MenuID:          uuid.New(),
		SyncMode:        enums.SyncModeManual,
	}
	require.NoError(t, conn.Create(&row).Error)
	return row.ID
}

func boolPtr(b bool) *bool { return &b }

func TestSetCreatesOverride(t *testing.T) {
	svc, conn := newOverrideService(t)
	ctx := context.Background()

	linkID := seedLink(t, conn)
	itemID := uuid.New()
	price := decimal.RequireFromString("11.50")

	out, err := svc.Set(ctx, linkID, itemID, SetInput{
		PriceOverride: &price,
		PriceLocked:   boolPtr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, linkID, out.BranchSyncLinkID)
	assert.Equal(t, itemID, out.MasterItemID)
	require.NotNil(t, out.PriceOverride)
	assert.True(t, out.PriceOverride.Equal(price))
	assert.True(t, out.PriceLocked)
	assert.False(t, out.FullyLocked)
}

func TestSetMergesPartialInput(t *testing.T) {
	svc, conn := newOverrideService(t)
	ctx := context.Background()

	linkID := seedLink(t, conn)
	itemID := uuid.New()
	price := decimal.RequireFromString("8.00")

	_, err := svc.Set(ctx, linkID, itemID, SetInput{
		PriceOverride: &price,
		PriceLocked:   boolPtr(true),
	})
	require.NoError(t, err)

	// flipping one lock must not clear the stored price
	out, err := svc.Set(ctx, linkID, itemID, SetInput{
		AvailabilityLocked: boolPtr(true),
	})
	require.NoError(t, err)

	require.NotNil(t, out.PriceOverride)
	assert.True(t, out.PriceOverride.Equal(price))
	assert.True(t, out.PriceLocked)
	assert.True(t, out.AvailabilityLocked)

	var count int64
	require.NoError(t, conn.Model(&models.BranchOverride{}).
		Where("branch_sync_link_id = ?", linkID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSetRejectsNegativePrice(t *testing.T) {
	svc, conn := newOverrideService(t)

	linkID := seedLink(t, conn)
	price := decimal.RequireFromString("-1.00")

	_, err := svc.Set(context.Background(), linkID, uuid.New(), SetInput{PriceOverride: &price})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSetUnknownLink(t *testing.T) {
	svc, _ := newOverrideService(t)

	_, err := svc.Set(context.Background(), uuid.New(), uuid.New(), SetInput{FullyLocked: boolPtr(true)})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, conn := newOverrideService(t)
	ctx := context.Background()

	linkID := seedLink(t, conn)
	itemID := uuid.New()

	_, err := svc.Set(ctx, linkID, itemID, SetInput{FullyLocked: boolPtr(true)})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, linkID, itemID))
	require.NoError(t, svc.Remove(ctx, linkID, itemID))

	list, err := svc.List(ctx, linkID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListReturnsOldestFirst(t *testing.T) {
	svc, conn := newOverrideService(t)
	ctx := context.Background()

	linkID := seedLink(t, conn)
	first := uuid.New()
	second := uuid.New()

	_, err := svc.Set(ctx, linkID, first, SetInput{PriceLocked: boolPtr(true)})
	require.NoError(t, err)
	_, err = svc.Set(ctx, linkID, second, SetInput{AvailabilityLocked: boolPtr(true)})
	require.NoError(t, err)

	list, err := svc.List(ctx, linkID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].MasterItemID)
	assert.Equal(t, second, list[1].MasterItemID)
}
