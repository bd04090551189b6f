package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tableloop/menusync-backend/pkg/enums"
)

// BranchSyncLink is the cursor tracking how far one branch has consumed
// master catalog versions. SyncedVersion 0 means the branch has never
// synced. Pending state is always derived from the catalog's
// current_version, never stored here.
type BranchSyncLink struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LocationID      uuid.UUID      `gorm:"column:location_id;type:uuid;not null;uniqueIndex:ux_branch_sync_links_location_catalog"`
	MasterCatalogID uuid.UUID      `gorm:"column:master_catalog_id;type:uuid;not null;uniqueIndex:ux_branch_sync_links_location_catalog"`
	MenuID          uuid.UUID      `gorm:"column:menu_id;type:uuid;not null"`
	SyncedVersion   int64          `gorm:"column:synced_version;not null;default:0"`
	SyncMode        enums.SyncMode `gorm:"column:sync_mode;not null;default:'manual'"`
	LastSyncedAt    *time.Time     `gorm:"column:last_synced_at"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
