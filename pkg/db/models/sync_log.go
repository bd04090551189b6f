package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tableloop/menusync-backend/pkg/enums"
)

// SyncLog is the append-only audit record of one sync attempt. Rows in a
// terminal status are never mutated again.
type SyncLog struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchSyncLinkID uuid.UUID         `gorm:"column:branch_sync_link_id;type:uuid;not null;index:ix_sync_logs_link"`
	Trigger          enums.SyncTrigger `gorm:"column:trigger;not null"`
	Status           enums.SyncStatus  `gorm:"column:status;not null"`
	TargetVersion    int64             `gorm:"column:target_version;not null"`
	ItemsSynced      int               `gorm:"column:items_synced;not null;default:0"`
	ItemsSkipped     int               `gorm:"column:items_skipped;not null;default:0"`
	CategoriesSynced int               `gorm:"column:categories_synced;not null;default:0"`
	ConflictDetails  json.RawMessage   `gorm:"column:conflict_details;type:jsonb"`
	ErrorMessage     *string           `gorm:"column:error_message"`
	SyncedBy         uuid.UUID         `gorm:"column:synced_by;type:uuid;not null"`
	StartedAt        time.Time         `gorm:"column:started_at;not null"`
	CompletedAt      *time.Time        `gorm:"column:completed_at"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
}
