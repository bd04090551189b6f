package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/tableloop/menusync-backend/pkg/db/types"
)

// MasterCatalog is the franchise-owned source of truth for menu content.
// CurrentVersion only ever increases; the bump is serialized on this row.
type MasterCatalog struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FranchiseID    uuid.UUID       `gorm:"column:franchise_id;type:uuid;not null"`
	Name           string          `gorm:"column:name;not null"`
	Currency       string          `gorm:"column:currency;not null;default:'USD'"`
	Settings       dbtypes.JSONMap `gorm:"column:settings;type:jsonb"`
	CurrentVersion int64           `gorm:"column:current_version;not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
