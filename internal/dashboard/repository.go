package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db/models"
)

// CatalogSummaryRow is one catalog's sync posture across its branches.
type CatalogSummaryRow struct {
	CatalogID        uuid.UUID `gorm:"column:catalog_id"`
	CatalogName      string    `gorm:"column:catalog_name"`
	CurrentVersion   int64     `gorm:"column:current_version"`
	TotalBranches    int       `gorm:"column:total_branches"`
	SyncedBranches   int       `gorm:"column:synced_branches"`
	PendingBranches  int       `gorm:"column:pending_branches"`
	AutoBranches     int       `gorm:"column:auto_branches"`
	DisabledBranches int       `gorm:"column:disabled_branches"`
}

// Repository answers the dashboard's aggregate questions with raw SQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindFranchise(ctx context.Context, id uuid.UUID) (*models.Franchise, error) {
	var row models.Franchise
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CatalogSummaries aggregates every catalog of the franchise with its
// branch counts in a single grouped query.
func (r *Repository) CatalogSummaries(ctx context.Context, franchiseID uuid.UUID) ([]CatalogSummaryRow, error) {
	var rows []CatalogSummaryRow
	err := r.db.WithContext(ctx).Raw(`
SELECT
    mc.id              AS catalog_id,
    mc.name            AS catalog_name,
    mc.current_version AS current_version,
    COUNT(bsl.id)      AS total_branches,
    COALESCE(SUM(CASE WHEN bsl.synced_version >= mc.current_version THEN 1 ELSE 0 END), 0) AS synced_branches,
    COALESCE(SUM(CASE WHEN bsl.sync_mode <> 'disabled' AND bsl.synced_version < mc.current_version THEN 1 ELSE 0 END), 0) AS pending_branches,
    COALESCE(SUM(CASE WHEN bsl.sync_mode = 'auto' THEN 1 ELSE 0 END), 0) AS auto_branches,
    COALESCE(SUM(CASE WHEN bsl.sync_mode = 'disabled' THEN 1 ELSE 0 END), 0) AS disabled_branches
FROM master_catalogs mc
LEFT JOIN branch_sync_links bsl ON bsl.master_catalog_id = mc.id
WHERE mc.franchise_id = ?
GROUP BY mc.id, mc.name, mc.current_version
ORDER BY mc.name ASC`, franchiseID).Scan(&rows).Error
	return rows, err
}

// CountFailedSyncsSince counts failed sync attempts across the franchise
// after the cutoff.
func (r *Repository) CountFailedSyncsSince(ctx context.Context, franchiseID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
SELECT COUNT(*)
FROM sync_logs sl
JOIN branch_sync_links bsl ON bsl.id = sl.branch_sync_link_id
JOIN master_catalogs mc ON mc.id = bsl.master_catalog_id
WHERE mc.franchise_id = ?
  AND sl.status = 'failed'
  AND sl.started_at >= ?`, franchiseID, since).Scan(&count).Error
	return count, err
}
