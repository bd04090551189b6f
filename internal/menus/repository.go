package menu

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db/models"
)

// Repository reads the branch-side rows the public menu is rendered from.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindLocationBySlug(ctx context.Context, slug string) (*models.Location, error) {
	var row models.Location
	if err := r.db.WithContext(ctx).First(&row, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListActiveMenus returns the location's menus that are switched on.
func (r *Repository) ListActiveMenus(ctx context.Context, locationID uuid.UUID) ([]models.BranchMenu, error) {
	var rows []models.BranchMenu
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND is_active = ?", locationID, true).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListActiveCategories returns the menu's visible categories in order.
func (r *Repository) ListActiveCategories(ctx context.Context, menuID uuid.UUID) ([]models.BranchCategory, error) {
	var rows []models.BranchCategory
	err := r.db.WithContext(ctx).
		Where("menu_id = ? AND is_active = ?", menuID, true).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListItems(ctx context.Context, menuID uuid.UUID) ([]models.BranchItem, error) {
	var rows []models.BranchItem
	err := r.db.WithContext(ctx).
		Where("menu_id = ?", menuID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// FindLinkByMenu returns the sync link feeding the menu, if any. Menus
// without a link have no overrides to merge.
func (r *Repository) FindLinkByMenu(ctx context.Context, menuID uuid.UUID) (*models.BranchSyncLink, error) {
	var row models.BranchSyncLink
	if err := r.db.WithContext(ctx).First(&row, "menu_id = ?", menuID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
