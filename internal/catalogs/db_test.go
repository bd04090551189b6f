package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS master_categories (
  id TEXT PRIMARY KEY,
  catalog_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_master_categories_catalog_slug ON master_categories (catalog_id, slug);`,
		`CREATE TABLE IF NOT EXISTS master_items (
  id TEXT PRIMARY KEY,
  catalog_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
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
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_master_items_catalog_slug ON master_items (catalog_id, slug);`,
		`CREATE TABLE IF NOT EXISTS master_offers (
  id TEXT PRIMARY KEY,
  catalog_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  discount_percent NUMERIC NOT NULL,
  starts_at DATETIME,
  ends_at DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
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
