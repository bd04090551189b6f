package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db/models"
)

// Repository persists master catalogs, categories, items, and offers.
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

func (r *Repository) CreateCatalog(ctx context.Context, row *models.MasterCatalog) (*models.MasterCatalog, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) FindCatalog(ctx context.Context, id uuid.UUID) (*models.MasterCatalog, error) {
	var row models.MasterCatalog
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListCatalogsByFranchise(ctx context.Context, franchiseID uuid.UUID) ([]models.MasterCatalog, error) {
	var rows []models.MasterCatalog
	err := r.db.WithContext(ctx).
		Where("franchise_id = ?", franchiseID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateCategory(ctx context.Context, row *models.MasterCategory) (*models.MasterCategory, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.MasterCategory, error) {
	var row models.MasterCategory
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, row *models.MasterCategory) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// DeleteCategory removes the category; its items cascade at the database.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MasterCategory{}, "id = ?", id).Error
}

func (r *Repository) CountItemsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MasterItem{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *Repository) CreateItem(ctx context.Context, row *models.MasterItem) (*models.MasterItem, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) FindItem(ctx context.Context, id uuid.UUID) (*models.MasterItem, error) {
	var row models.MasterItem
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) UpdateItem(ctx context.Context, row *models.MasterItem) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MasterItem{}, "id = ?", id).Error
}

func (r *Repository) CreateOffer(ctx context.Context, row *models.MasterOffer) (*models.MasterOffer, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *Repository) FindOffer(ctx context.Context, id uuid.UUID) (*models.MasterOffer, error) {
	var row models.MasterOffer
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) UpdateOffer(ctx context.Context, row *models.MasterOffer) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *Repository) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MasterOffer{}, "id = ?", id).Error
}
