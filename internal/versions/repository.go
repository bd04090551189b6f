package version

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/pagination"
)

// Repository persists catalog versions and the catalog version counter.
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

// LockCatalog loads the catalog row under FOR UPDATE so concurrent version
// bumps serialize and numbers stay gapless.
func (r *Repository) LockCatalog(ctx context.Context, catalogID uuid.UUID) (*models.MasterCatalog, error) {
	q := r.db.WithContext(ctx)
	// sqlite has no row locks; writes there are single-connection anyway.
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var catalog models.MasterCatalog
	if err := q.First(&catalog, "id = ?", catalogID).Error; err != nil {
		return nil, err
	}
	return &catalog, nil
}

// FindCatalog loads the catalog without locking.
func (r *Repository) FindCatalog(ctx context.Context, catalogID uuid.UUID) (*models.MasterCatalog, error) {
	var catalog models.MasterCatalog
	if err := r.db.WithContext(ctx).First(&catalog, "id = ?", catalogID).Error; err != nil {
		return nil, err
	}
	return &catalog, nil
}

// InsertVersion appends one immutable version row.
func (r *Repository) InsertVersion(ctx context.Context, row *models.CatalogVersion) (*models.CatalogVersion, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// AdvanceCurrentVersion persists the new counter on the catalog row.
func (r *Repository) AdvanceCurrentVersion(ctx context.Context, catalogID uuid.UUID, version int64) error {
	return r.db.WithContext(ctx).
		Model(&models.MasterCatalog{}).
		Where("id = ?", catalogID).
		Update("current_version", version).Error
}

// FindVersion loads one version row by catalog and number.
func (r *Repository) FindVersion(ctx context.Context, catalogID uuid.UUID, number int64) (*models.CatalogVersion, error) {
	var row models.CatalogVersion
	err := r.db.WithContext(ctx).
		First(&row, "catalog_id = ? AND version_number = ?", catalogID, number).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListVersions returns version rows newest-first with cursor pagination.
func (r *Repository) ListVersions(ctx context.Context, catalogID uuid.UUID, params pagination.Params) ([]models.CatalogVersion, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := r.db.WithContext(ctx).
		Where("catalog_id = ?", catalogID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		where, args := cursor.OlderThanClause()
		q = q.Where(where, args...)
	}

	var rows []models.CatalogVersion
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListMasterRows loads the live master rows used to build a snapshot.
func (r *Repository) ListMasterRows(ctx context.Context, catalogID uuid.UUID) ([]models.MasterCategory, []models.MasterItem, []models.MasterOffer, error) {
	tx := r.db.WithContext(ctx)

	var categories []models.MasterCategory
	if err := tx.Where("catalog_id = ?", catalogID).Order("position ASC").Find(&categories).Error; err != nil {
		return nil, nil, nil, err
	}
	var items []models.MasterItem
	if err := tx.Where("catalog_id = ?", catalogID).Order("position ASC").Find(&items).Error; err != nil {
		return nil, nil, nil, err
	}
	var offers []models.MasterOffer
	if err := tx.Where("catalog_id = ?", catalogID).Find(&offers).Error; err != nil {
		return nil, nil, nil, err
	}
	return categories, items, offers, nil
}
