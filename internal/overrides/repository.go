package override

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tableloop/menusync-backend/pkg/db/models"
)

// Repository persists branch overrides.
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

// Upsert writes the override, replacing any existing row for the same
// link/item pair.
func (r *Repository) Upsert(ctx context.Context, row *models.BranchOverride) (*models.BranchOverride, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "branch_sync_link_id"}, {Name: "master_item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"price_override",
				"availability_override",
				"price_locked",
				"availability_locked",
				"fully_locked",
				"notes",
				"updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Find loads the override for one link/item pair.
func (r *Repository) Find(ctx context.Context, linkID, masterItemID uuid.UUID) (*models.BranchOverride, error) {
	var row models.BranchOverride
	err := r.db.WithContext(ctx).
		First(&row, "branch_sync_link_id = ? AND master_item_id = ?", linkID, masterItemID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes the override for one link/item pair. Deleting a missing
// row is not an error.
func (r *Repository) Delete(ctx context.Context, linkID, masterItemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.BranchOverride{}, "branch_sync_link_id = ? AND master_item_id = ?", linkID, masterItemID).Error
}

// ListByLink returns all overrides for one sync link.
func (r *Repository) ListByLink(ctx context.Context, linkID uuid.UUID) ([]models.BranchOverride, error) {
	var rows []models.BranchOverride
	err := r.db.WithContext(ctx).
		Where("branch_sync_link_id = ?", linkID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// MapByItem returns the link's overrides keyed by master item id.
func (r *Repository) MapByItem(ctx context.Context, linkID uuid.UUID) (map[uuid.UUID]models.BranchOverride, error) {
	rows, err := r.ListByLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.BranchOverride, len(rows))
	for _, row := range rows {
		out[row.MasterItemID] = row
	}
	return out, nil
}
