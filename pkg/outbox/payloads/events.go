package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/tableloop/menusync-backend/pkg/enums"
)

// CatalogVersionCreatedEvent signals that a master catalog advanced to a
// new version. Auto-mode branches react to this.
type CatalogVersionCreatedEvent struct {
	CatalogID     uuid.UUID        `json:"catalog_id"`
	FranchiseID   uuid.UUID        `json:"franchise_id"`
	VersionNumber int64            `json:"version_number"`
	ChangeType    enums.ChangeType `json:"change_type"`
	ChangeSummary string           `json:"change_summary,omitempty"`
}

// SyncCompletedEvent is emitted after a branch successfully consumed a
// catalog version.
type SyncCompletedEvent struct {
	BranchSyncLinkID uuid.UUID         `json:"branch_sync_link_id"`
	LocationID       uuid.UUID         `json:"location_id"`
	CatalogID        uuid.UUID         `json:"catalog_id"`
	TargetVersion    int64             `json:"target_version"`
	Trigger          enums.SyncTrigger `json:"trigger"`
	ItemsSynced      int               `json:"items_synced"`
	ItemsSkipped     int               `json:"items_skipped"`
	CompletedAt      time.Time         `json:"completed_at"`
}

// SyncFailedEvent is emitted when a sync attempt rolled back.
type SyncFailedEvent struct {
	BranchSyncLinkID uuid.UUID         `json:"branch_sync_link_id"`
	LocationID       uuid.UUID         `json:"location_id"`
	CatalogID        uuid.UUID         `json:"catalog_id"`
	TargetVersion    int64             `json:"target_version"`
	Trigger          enums.SyncTrigger `json:"trigger"`
	Error            string            `json:"error"`
	FailedAt         time.Time         `json:"failed_at"`
}
