package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BranchOverride is a branch-local customization layered on one master
// item. Only explicit branch-manager action creates or mutates these rows;
// the sync engine reads them but never writes them.
type BranchOverride struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchSyncLinkID     uuid.UUID        `gorm:"column:branch_sync_link_id;type:uuid;not null;uniqueIndex:ux_branch_overrides_link_item"`
	MasterItemID         uuid.UUID        `gorm:"column:master_item_id;type:uuid;not null;uniqueIndex:ux_branch_overrides_link_item"`
	PriceOverride        *decimal.Decimal `gorm:"column:price_override;type:numeric(10,2)"`
	AvailabilityOverride *bool            `gorm:"column:availability_override"`
	PriceLocked          bool             `gorm:"column:price_locked;not null;default:false"`
	AvailabilityLocked   bool             `gorm:"column:availability_locked;not null;default:false"`
	FullyLocked          bool             `gorm:"column:fully_locked;not null;default:false"`
	Notes                *string          `gorm:"column:notes"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
