package menu

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	override "github.com/tableloop/menusync-backend/internal/overrides"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	pkgerrors "github.com/tableloop/menusync-backend/pkg/errors"
)

func setupMenuTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS locations (
  id TEXT PRIMARY KEY,
  franchise_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  timezone TEXT NOT NULL DEFAULT 'UTC',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS branch_menus (
  id TEXT PRIMARY KEY,
  location_id TEXT NOT NULL,
  name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS branch_categories (
  id TEXT PRIMARY KEY,
  menu_id TEXT NOT NULL,
  master_category_id TEXT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS branch_items (
  id TEXT PRIMARY KEY,
  menu_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  master_item_id TEXT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  is_available INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  allergens TEXT,
  tags TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  is_local_only INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
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
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type menuFixture struct {
	svc      Service
	conn     *gorm.DB
	location models.Location
	menu     models.BranchMenu
	category models.BranchCategory
	link     models.BranchSyncLink
}

func newMenuFixture(t *testing.T) *menuFixture {
	t.Helper()

	conn := setupMenuTestDB(t)
	svc, err := NewService(NewRepository(conn), override.NewRepository(conn), nil)
	require.NoError(t, err)

	f := &menuFixture{svc: svc, conn: conn}

	f.location = models.Location{
		ID:          uuid.New(),
		FranchiseID: uuid.New(),
		Name:        "Downtown",
		Slug:        "downtown",
		Timezone:    "UTC",
		IsActive:    true,
	}
	require.NoError(t, conn.Create(&f.location).Error)

	f.menu = models.BranchMenu{
		ID:         uuid.New(),
		LocationID: f.location.ID,
		Name:       "Downtown Menu",
		IsActive:   true,
	}
	require.NoError(t, conn.Create(&f.menu).Error)

	f.category = models.BranchCategory{
		ID:       uuid.New(),
		MenuID:   f.menu.ID,
		Name:     "Mains",
		Slug:     "mains",
		Position: 1,
		IsActive: true,
	}
	require.NoError(t, conn.Create(&f.category).Error)

	f.link = models.BranchSyncLink{
		ID:              uuid.New(),
		LocationID:      f.location.ID,
		MasterCatalogID: uuid.New(),
		MenuID:          f.menu.ID,
		SyncedVersion:   1,
		SyncMode:        enums.SyncModeManual,
	}
	require.NoError(t, conn.Create(&f.link).Error)
	return f
}

func (f *menuFixture) addItem(t *testing.T, slug, price string, masterID *uuid.UUID, available bool) models.BranchItem {
	t.Helper()
	row := models.BranchItem{
		ID:           uuid.New(),
		MenuID:       f.menu.ID,
		CategoryID:   f.category.ID,
		MasterItemID: masterID,
		Name:         slug,
		Slug:         slug,
		Price:        decimal.RequireFromString(price),
		Currency:     "USD",
		IsAvailable:  available,
		Position:     1,
	}
	require.NoError(t, f.conn.Create(&row).Error)
	return row
}

func TestGetPublicMenuMergesOverrides(t *testing.T) {
	f := newMenuFixture(t)
	ctx := context.Background()

	burgerMaster := uuid.New()
	f.addItem(t, "classic-burger", "10.00", &burgerMaster, true)

	price := decimal.RequireFromString("8.50")
	unavailable := false
	require.NoError(t, f.conn.Create(&models.BranchOverride{
		ID:                   uuid.New(),
		BranchSyncLinkID:     f.link.ID,
		MasterItemID:         burgerMaster,
		PriceOverride:        &price,
		AvailabilityOverride: &unavailable,
	}).Error)

	out, err := f.svc.GetPublicMenu(ctx, "downtown")
	require.NoError(t, err)
	assert.Equal(t, "Downtown", out.Location.Name)
	require.Len(t, out.Menus, 1)
	require.Len(t, out.Menus[0].Categories, 1)
	require.Len(t, out.Menus[0].Categories[0].Items, 1)

	item := out.Menus[0].Categories[0].Items[0]
	assert.Equal(t, "8.50", item.Price, "override price wins at read time")
	assert.False(t, item.IsAvailable, "override availability wins at read time")
}

func TestGetPublicMenuLocalItemsUntouched(t *testing.T) {
	f := newMenuFixture(t)

	f.addItem(t, "house-special", "14.00", nil, true)

	out, err := f.svc.GetPublicMenu(context.Background(), "downtown")
	require.NoError(t, err)
	item := out.Menus[0].Categories[0].Items[0]
	assert.Equal(t, "14.00", item.Price)
	assert.True(t, item.IsAvailable)
}

func TestGetPublicMenuHidesInactiveCategories(t *testing.T) {
	f := newMenuFixture(t)

	hidden := models.BranchCategory{
		ID:       uuid.New(),
		MenuID:   f.menu.ID,
		Name:     "Seasonal",
		Slug:     "seasonal",
		Position: 2,
		IsActive: false,
	}
	require.NoError(t, f.conn.Create(&hidden).Error)

	out, err := f.svc.GetPublicMenu(context.Background(), "downtown")
	require.NoError(t, err)
	require.Len(t, out.Menus[0].Categories, 1)
	assert.Equal(t, "mains", out.Menus[0].Categories[0].Slug)
}

func TestGetPublicMenuUnknownLocation(t *testing.T) {
	f := newMenuFixture(t)

	_, err := f.svc.GetPublicMenu(context.Background(), "nowhere")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetPublicMenuInactiveLocationHidden(t *testing.T) {
	f := newMenuFixture(t)
	require.NoError(t, f.conn.Model(&models.Location{}).
		Where("id = ?", f.location.ID).
		Update("is_active", false).Error)

	_, err := f.svc.GetPublicMenu(context.Background(), "downtown")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
