package sync

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
)

func setupSyncTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS master_catalogs (
  id TEXT PRIMARY KEY,
  franchise_id TEXT NOT NULL,
  name TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  settings TEXT,
  current_version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS catalog_versions (
  id TEXT PRIMARY KEY,
  catalog_id TEXT NOT NULL,
  version_number INTEGER NOT NULL,
  change_type TEXT NOT NULL,
  change_summary TEXT NOT NULL DEFAULT '',
  change_data TEXT,
  snapshot TEXT NOT NULL,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_catalog_versions_catalog_number ON catalog_versions (catalog_id, version_number);`,
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
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_branch_categories_menu_slug ON branch_categories (menu_id, slug);`,
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
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_branch_sync_links_location_catalog ON branch_sync_links (location_id, master_catalog_id);`,
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
		`CREATE TABLE IF NOT EXISTS sync_logs (
  id TEXT PRIMARY KEY,
  branch_sync_link_id TEXT NOT NULL,
  "trigger" TEXT NOT NULL,
  status TEXT NOT NULL,
  target_version INTEGER NOT NULL,
  items_synced INTEGER NOT NULL DEFAULT 0,
  items_skipped INTEGER NOT NULL DEFAULT 0,
  categories_synced INTEGER NOT NULL DEFAULT 0,
  conflict_details TEXT,
  error_message TEXT,
  synced_by TEXT NOT NULL,
  started_at DATETIME NOT NULL,
  completed_at DATETIME,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedCatalog(t *testing.T, conn *gorm.DB, currentVersion int64) uuid.UUID {
	t.Helper()
	row := models.MasterCatalog{
		ID:             uuid.New(),
		FranchiseID:    uuid.New(),
		Name:           "Master Menu",
		Currency:       "USD",
		CurrentVersion: currentVersion,
	}
	require.NoError(t, conn.Create(&row).Error)
	return row.ID
}

func seedVersion(t *testing.T, conn *gorm.DB, catalogID uuid.UUID, number int64, snap *version.CatalogSnapshot) {
	t.Helper()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	row := models.CatalogVersion{
		ID:            uuid.New(),
		CatalogID:     catalogID,
		VersionNumber: number,
		ChangeType:    enums.ChangeTypeItemUpdated,
		ChangeSummary: "seeded",
		Snapshot:      raw,
		CreatedBy:     uuid.New(),
	}
	require.NoError(t, conn.Create(&row).Error)
	require.NoError(t, conn.Model(&models.MasterCatalog{}).
		Where("id = ?", catalogID).
		Update("current_version", number).Error)
}

func seedLink(t *testing.T, conn *gorm.DB, catalogID uuid.UUID, mode enums.SyncMode, syncedVersion int64) *models.BranchSyncLink {
	t.Helper()
	menu := models.BranchMenu{
		ID:         uuid.New(),
		LocationID: uuid.New(),
		Name:       "Branch Menu",
		IsActive:   true,
	}
	require.NoError(t, conn.Create(&menu).Error)

	link := models.BranchSyncLink{
		ID:              uuid.New(),
		LocationID:      menu.LocationID,
		MasterCatalogID: catalogID,
		MenuID:          menu.ID,
		SyncedVersion:   syncedVersion,
		SyncMode:        mode,
	}
	require.NoError(t, conn.Create(&link).Error)
	return &link
}
