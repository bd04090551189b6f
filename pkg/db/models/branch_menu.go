package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/tableloop/menusync-backend/pkg/db/types"
)

// BranchMenu is the denormalized live menu served at one location.
type BranchMenu struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BranchCategory mirrors a master category on one branch menu, keyed by
// (menu, slug) so syncs can upsert without master ids.
type BranchCategory struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuID           uuid.UUID  `gorm:"column:menu_id;type:uuid;not null;uniqueIndex:ux_branch_categories_menu_slug"`
	MasterCategoryID *uuid.UUID `gorm:"column:master_category_id;type:uuid"`
	Name             string     `gorm:"column:name;not null"`
	Slug             string     `gorm:"column:slug;not null;uniqueIndex:ux_branch_categories_menu_slug"`
	Position         int        `gorm:"column:position;not null;default:0"`
	IsActive         bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BranchItem is the branch's local copy of a menu item. IsLocalOnly marks
// rows whose master item was removed but survived because the branch had
// them fully locked.
type BranchItem struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuID       uuid.UUID          `gorm:"column:menu_id;type:uuid;not null"`
	CategoryID   uuid.UUID          `gorm:"column:category_id;type:uuid;not null"`
	MasterItemID *uuid.UUID         `gorm:"column:master_item_id;type:uuid;index:ix_branch_items_master_item"`
	Name         string             `gorm:"column:name;not null"`
	Slug         string             `gorm:"column:slug;not null"`
	Description  *string            `gorm:"column:description"`
	Price        decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Currency     string             `gorm:"column:currency;not null;default:'USD'"`
	IsAvailable  bool               `gorm:"column:is_available;not null;default:true"`
	ImageURL     *string            `gorm:"column:image_url"`
	Allergens    dbtypes.StringList `gorm:"column:allergens;type:jsonb"`
	Tags         dbtypes.StringList `gorm:"column:tags;type:jsonb"`
	Position     int                `gorm:"column:position;not null;default:0"`
	IsLocalOnly  bool               `gorm:"column:is_local_only;not null;default:false"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
