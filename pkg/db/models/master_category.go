package models

import (
	"time"

	"github.com/google/uuid"
)

// MasterCategory groups master items inside one catalog.
type MasterCategory struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CatalogID uuid.UUID    `gorm:"column:catalog_id;type:uuid;not null;uniqueIndex:ux_master_categories_catalog_slug"`
	Name      string       `gorm:"column:name;not null"`
	Slug      string       `gorm:"column:slug;not null;uniqueIndex:ux_master_categories_catalog_slug"`
	Position  int          `gorm:"column:position;not null;default:0"`
	IsActive  bool         `gorm:"column:is_active;not null;default:true"`
	Items     []MasterItem `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
