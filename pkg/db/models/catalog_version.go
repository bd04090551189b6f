package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tableloop/menusync-backend/pkg/enums"
)

// CatalogVersion is one immutable snapshot of a master catalog. Rows are
// append-only; Snapshot is a complete serialization, never a delta, so any
// two versions can be diffed without replaying history.
type CatalogVersion struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CatalogID     uuid.UUID        `gorm:"column:catalog_id;type:uuid;not null;uniqueIndex:ux_catalog_versions_catalog_number"`
	VersionNumber int64            `gorm:"column:version_number;not null;uniqueIndex:ux_catalog_versions_catalog_number"`
	ChangeType    enums.ChangeType `gorm:"column:change_type;not null"`
	ChangeSummary string           `gorm:"column:change_summary;not null;default:''"`
	ChangeData    json.RawMessage  `gorm:"column:change_data;type:jsonb"`
	Snapshot      json.RawMessage  `gorm:"column:snapshot;type:jsonb;not null"`
	CreatedBy     uuid.UUID        `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
}
