package synclink

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
)

// Repository persists branch sync links and their menus.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateMenu(ctx context.Context, row *models.BranchMenu) (*models.BranchMenu, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) CreateLink(ctx context.Context, row *models.BranchSyncLink) (*models.BranchSyncLink, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindLink loads one link by id.
func (r *Repository) FindLink(ctx context.Context, id uuid.UUID) (*models.BranchSyncLink, error) {
	var row models.BranchSyncLink
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindLinkByLocationCatalog loads the unique link for a location/catalog pair.
func (r *Repository) FindLinkByLocationCatalog(ctx context.Context, locationID, catalogID uuid.UUID) (*models.BranchSyncLink, error) {
	var row models.BranchSyncLink
	err := r.db.WithContext(ctx).
		First(&row, "location_id = ? AND master_catalog_id = ?", locationID, catalogID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListLinksByCatalog returns every link attached to the catalog.
func (r *Repository) ListLinksByCatalog(ctx context.Context, catalogID uuid.UUID) ([]models.BranchSyncLink, error) {
	var rows []models.BranchSyncLink
	err := r.db.WithContext(ctx).
		Where("master_catalog_id = ?", catalogID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListStaleAutoLinks returns auto-mode links whose branch lags its catalog.
func (r *Repository) ListStaleAutoLinks(ctx context.Context) ([]models.BranchSyncLink, error) {
	var rows []models.BranchSyncLink
	err := r.db.WithContext(ctx).
		Joins("JOIN master_catalogs mc ON mc.id = branch_sync_links.master_catalog_id").
		Where("branch_sync_links.sync_mode = ?", enums.SyncModeAuto).
		Where("branch_sync_links.synced_version < mc.current_version").
		Order("branch_sync_links.created_at ASC").
		Find(&rows).Error
	return rows, err
}

// UpdateMode sets the link's sync mode.
func (r *Repository) UpdateMode(ctx context.Context, id uuid.UUID, mode enums.SyncMode) error {
	return r.db.WithContext(ctx).
		Model(&models.BranchSyncLink{}).
		Where("id = ?", id).
		Update("sync_mode", mode).Error
}

// AdvanceCursor moves the link's consumed-version cursor forward.
func (r *Repository) AdvanceCursor(ctx context.Context, id uuid.UUID, version int64, syncedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.BranchSyncLink{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"synced_version": version,
			"last_synced_at": syncedAt,
		}).Error
}

// AdvanceCursorTx is AdvanceCursor bound to an existing transaction. The
// cursor must move in the same transaction that rewrites the branch menu.
func (r *Repository) AdvanceCursorTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, version int64, syncedAt time.Time) error {
	return r.WithTx(tx).AdvanceCursor(ctx, id, version, syncedAt)
}
