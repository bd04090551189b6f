package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableloop/menusync-backend/pkg/db/models"
	"github.com/tableloop/menusync-backend/pkg/enums"
	"github.com/tableloop/menusync-backend/pkg/pagination"
)

// Repository persists branch menu rows and the sync audit log.
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

// ListBranchCategories loads all categories on one branch menu.
func (r *Repository) ListBranchCategories(ctx context.Context, menuID uuid.UUID) ([]models.BranchCategory, error) {
	var rows []models.BranchCategory
	err := r.db.WithContext(ctx).
		Where("menu_id = ?", menuID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

// ListBranchItems loads all items on one branch menu.
func (r *Repository) ListBranchItems(ctx context.Context, menuID uuid.UUID) ([]models.BranchItem, error) {
	var rows []models.BranchItem
	err := r.db.WithContext(ctx).
		Where("menu_id = ?", menuID).
		Order("position ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) SaveBranchCategory(ctx context.Context, row *models.BranchCategory) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *Repository) SaveBranchItem(ctx context.Context, row *models.BranchItem) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *Repository) DeleteBranchItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BranchItem{}, "id = ?", id).Error
}

func (r *Repository) DeleteBranchCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BranchCategory{}, "id = ?", id).Error
}

// CountBranchItemsInCategory counts surviving items in one branch category.
func (r *Repository) CountBranchItemsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BranchItem{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CreateSyncLog appends one audit row, normally in in_progress status.
func (r *Repository) CreateSyncLog(ctx context.Context, row *models.SyncLog) (*models.SyncLog, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// CompleteSyncLog moves an in_progress row to a terminal status with its
// final counters. The status predicate makes terminal rows immutable even
// if a caller retries a finished attempt.
func (r *Repository) CompleteSyncLog(ctx context.Context, id uuid.UUID, status enums.SyncStatus, update SyncLogUpdate) error {
	values := map[string]any{
		"status":            status,
		"items_synced":      update.ItemsSynced,
		"items_skipped":     update.ItemsSkipped,
		"categories_synced": update.CategoriesSynced,
		"completed_at":      update.CompletedAt,
	}
	if update.ConflictDetails != nil {
		values["conflict_details"] = update.ConflictDetails
	}
	if update.ErrorMessage != nil {
		values["error_message"] = *update.ErrorMessage
	}
	return r.db.WithContext(ctx).
		Model(&models.SyncLog{}).
		Where("id = ? AND status = ?", id, enums.SyncStatusInProgress).
		Updates(values).Error
}

// SyncLogUpdate carries the terminal counters for one audit row.
type SyncLogUpdate struct {
	ItemsSynced      int
	ItemsSkipped     int
	CategoriesSynced int
	ConflictDetails  []byte
	ErrorMessage     *string
	CompletedAt      time.Time
}

// ListSyncLogs pages one link's audit history newest-first.
func (r *Repository) ListSyncLogs(ctx context.Context, linkID uuid.UUID, params pagination.Params) ([]models.SyncLog, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := r.db.WithContext(ctx).
		Where("branch_sync_link_id = ?", linkID).
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

	var rows []models.SyncLog
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
