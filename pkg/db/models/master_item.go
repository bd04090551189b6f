package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/tableloop/menusync-backend/pkg/db/types"
)

// MasterItem is one live menu item row on the master catalog.
type MasterItem struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CatalogID   uuid.UUID          `gorm:"column:catalog_id;type:uuid;not null"`
	CategoryID  uuid.UUID          `gorm:"column:category_id;type:uuid;not null"`
	Name        string             `gorm:"column:name;not null"`
	Slug        string             `gorm:"column:slug;not null"`
	Description *string            `gorm:"column:description"`
	Price       decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Currency    string             `gorm:"column:currency;not null;default:'USD'"`
	IsAvailable bool               `gorm:"column:is_available;not null;default:true"`
	ImageURL    *string            `gorm:"column:image_url"`
	Allergens   dbtypes.StringList `gorm:"column:allergens;type:jsonb"`
	Tags        dbtypes.StringList `gorm:"column:tags;type:jsonb"`
	Position    int                `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
